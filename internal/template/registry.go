// Package template manages configuration templates: the built-in set shipped
// with the binary plus user-defined templates stored alongside configurations.
package template

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"testdeck/internal/config"
	"testdeck/pkg/logging"
)

// Registry holds templates backed by the Store's templates namespace.
type Registry struct {
	mu    sync.RWMutex
	store *config.Store
	index map[string]config.ConfigurationTemplate
}

// NewRegistry creates a Registry, seeds any built-in template that is absent
// from the backing directory, and loads all templates from disk. Templates
// already on disk are never overwritten by built-in defaults: disk wins, so
// users can tune the built-ins.
func NewRegistry(store *config.Store) (*Registry, error) {
	r := &Registry{
		store: store,
		index: make(map[string]config.ConfigurationTemplate),
	}

	for _, builtin := range BuiltinTemplates() {
		if store.Exists(config.KindTemplates, builtin.ID) {
			continue
		}
		data, err := json.MarshalIndent(builtin, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode built-in template %s: %w", builtin.ID, err)
		}
		if err := store.Save(config.KindTemplates, builtin.ID, data); err != nil {
			return nil, fmt.Errorf("failed to seed built-in template %s: %w", builtin.ID, err)
		}
		logging.Info("TemplateRegistry", "Seeded built-in template %s", builtin.ID)
	}

	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) reload() error {
	ids, err := r.store.List(config.KindTemplates)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = make(map[string]config.ConfigurationTemplate, len(ids))
	for _, id := range ids {
		data, err := r.store.Load(config.KindTemplates, id)
		if err != nil {
			return err
		}
		var tmpl config.ConfigurationTemplate
		if err := json.Unmarshal(data, &tmpl); err != nil {
			return &config.ParseError{Source: "template " + id, Err: err}
		}
		r.index[tmpl.ID] = tmpl
	}
	return nil
}

// Get returns a template by ID.
func (r *Registry) Get(id string) (config.ConfigurationTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.index[id]
	if !ok {
		return config.ConfigurationTemplate{}, config.NewNotFoundError("template", id)
	}
	return tmpl, nil
}

// List returns all templates sorted by ID.
func (r *Registry) List() []config.ConfigurationTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	templates := make([]config.ConfigurationTemplate, 0, len(r.index))
	for _, tmpl := range r.index {
		templates = append(templates, tmpl)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates
}

// Save persists a user-defined template and adds it to the index.
func (r *Registry) Save(tmpl config.ConfigurationTemplate) error {
	if tmpl.ID == "" {
		return fmt.Errorf("template id is required")
	}
	data, err := json.MarshalIndent(tmpl, "", "  ")
	if err != nil {
		return err
	}
	if err := r.store.Save(config.KindTemplates, tmpl.ID, data); err != nil {
		return err
	}

	r.mu.Lock()
	r.index[tmpl.ID] = tmpl
	r.mu.Unlock()
	return nil
}

// Delete removes a template from the index and the backing directory.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[id]; !ok {
		return config.NewNotFoundError("template", id)
	}
	if err := r.store.Delete(config.KindTemplates, id); err != nil {
		return err
	}
	delete(r.index, id)
	return nil
}

// Instantiate produces a configuration document from a template base with
// caller overrides shallow-merged on top: each override key replaces the
// whole top-level value, nested objects are never deep-merged. The result is
// returned as a typed configuration ready for the create path (which assigns
// ID and timestamps and validates).
func (r *Registry) Instantiate(id string, overrides map[string]interface{}) (config.TestConfiguration, error) {
	tmpl, err := r.Get(id)
	if err != nil {
		return config.TestConfiguration{}, err
	}

	merged := make(map[string]interface{}, len(tmpl.Configuration)+len(overrides))
	for k, v := range tmpl.Configuration {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}

	// Identity and timestamps are owned by the create path.
	delete(merged, "id")
	delete(merged, "createdAt")
	delete(merged, "updatedAt")

	data, err := json.Marshal(merged)
	if err != nil {
		return config.TestConfiguration{}, err
	}
	var cfg config.TestConfiguration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return config.TestConfiguration{}, &config.ParseError{Source: "template " + id, Err: err}
	}
	return cfg, nil
}
