// Package manager implements the configuration lifecycle: create, update,
// delete, clone, template instantiation, import/export, and queries. Every
// mutation validates before persisting and publishes a lifecycle event after.
package manager

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	sigsyaml "sigs.k8s.io/yaml"

	"testdeck/internal/config"
	"testdeck/internal/events"
	"testdeck/internal/schema"
	"testdeck/internal/template"
	"testdeck/internal/validation"
	"testdeck/pkg/logging"
)

// Supported serialization formats for import and export.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Manager owns the configuration index and coordinates the store, validation
// engine, template registry, and event bus. All mutations go through it so
// the invariants (valid-on-disk, immutable ID, bumped UpdatedAt) hold.
type Manager struct {
	store     *config.Store
	templates *template.Registry
	bus       *events.Bus
}

// NewManager creates a Manager over the given store. The template registry is
// constructed here so its built-in seeding happens exactly once per process.
func NewManager(store *config.Store) (*Manager, error) {
	registry, err := template.NewRegistry(store)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize template registry: %w", err)
	}
	return &Manager{
		store:     store,
		templates: registry,
		bus:       events.NewBus(),
	}, nil
}

// Templates exposes the template registry.
func (m *Manager) Templates() *template.Registry { return m.templates }

// Events exposes the lifecycle event bus for subscription.
func (m *Manager) Events() *events.Bus { return m.bus }

// CreateConfiguration fills defaults on the partial input, assigns a fresh ID
// and timestamps, validates, persists, and publishes ConfigurationCreated.
// Returns the assigned ID.
func (m *Manager) CreateConfiguration(partial config.TestConfiguration) (string, error) {
	cfg := partial
	config.ApplyDefaults(&cfg)

	cfg.ID = uuid.NewString()
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	result := validation.Validate(&cfg)
	if err := result.Err(); err != nil {
		return "", err
	}

	if err := m.persist(&cfg); err != nil {
		return "", err
	}

	logging.Info("Manager", "Created configuration %s (%s)", cfg.ID, cfg.Name)
	m.bus.Publish(events.Event{Type: events.ConfigurationCreated, ID: cfg.ID, Name: cfg.Name})
	return cfg.ID, nil
}

// UpdateConfiguration applies field changes to an existing configuration.
// ID and CreatedAt are preserved, UpdatedAt is bumped, and the merged result
// must validate before anything is written.
func (m *Manager) UpdateConfiguration(id string, changes map[string]interface{}) error {
	current, err := m.GetConfiguration(id)
	if err != nil {
		return err
	}

	// Shallow merge at the document level: each changed key replaces the
	// whole top-level value, matching template instantiation semantics.
	data, err := json.Marshal(current)
	if err != nil {
		return err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	for k, v := range changes {
		doc[k] = v
	}
	delete(doc, "id")
	delete(doc, "createdAt")
	delete(doc, "updatedAt")

	merged, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var cfg config.TestConfiguration
	if err := json.Unmarshal(merged, &cfg); err != nil {
		return &config.ParseError{Source: "update " + id, Err: err}
	}

	cfg.ID = current.ID
	cfg.CreatedAt = current.CreatedAt
	cfg.UpdatedAt = time.Now().UTC()

	result := validation.Validate(&cfg)
	if err := result.Err(); err != nil {
		return err
	}

	if err := m.persist(&cfg); err != nil {
		return err
	}

	logging.Info("Manager", "Updated configuration %s (%s)", cfg.ID, cfg.Name)
	m.bus.Publish(events.Event{Type: events.ConfigurationUpdated, ID: cfg.ID, Name: cfg.Name})
	return nil
}

// SaveConfiguration persists a fully formed configuration after validating
// it, bumping UpdatedAt. Used by callers that edit the typed document
// directly instead of going through the generic update path.
func (m *Manager) SaveConfiguration(cfg *config.TestConfiguration) error {
	if cfg.ID == "" {
		return fmt.Errorf("configuration id is required")
	}
	existed := m.store.Exists(config.KindConfigurations, cfg.ID)
	cfg.UpdatedAt = time.Now().UTC()

	result := validation.Validate(cfg)
	if err := result.Err(); err != nil {
		return err
	}
	if err := m.persist(cfg); err != nil {
		return err
	}

	eventType := events.ConfigurationCreated
	if existed {
		eventType = events.ConfigurationUpdated
	}
	m.bus.Publish(events.Event{Type: eventType, ID: cfg.ID, Name: cfg.Name})
	return nil
}

// DeleteConfiguration removes a configuration and publishes ConfigurationDeleted.
func (m *Manager) DeleteConfiguration(id string) error {
	cfg, err := m.GetConfiguration(id)
	if err != nil {
		return err
	}
	if err := m.store.Delete(config.KindConfigurations, id); err != nil {
		return err
	}

	logging.Info("Manager", "Deleted configuration %s (%s)", id, cfg.Name)
	m.bus.Publish(events.Event{Type: events.ConfigurationDeleted, ID: id, Name: cfg.Name})
	return nil
}

// CloneConfiguration duplicates an existing configuration under a new ID and
// name. An empty newName defaults to "<original name> (Copy)". The clone goes
// through the create path, so it gets fresh timestamps and is re-validated.
func (m *Manager) CloneConfiguration(id, newName string) (string, error) {
	source, err := m.GetConfiguration(id)
	if err != nil {
		return "", err
	}

	clone := *source
	if newName == "" {
		newName = source.Name + " (Copy)"
	}
	clone.Name = newName
	return m.CreateConfiguration(clone)
}

// CreateFromTemplate instantiates a template with shallow-merged overrides
// and runs the result through the create path.
func (m *Manager) CreateFromTemplate(templateID string, overrides map[string]interface{}) (string, error) {
	cfg, err := m.templates.Instantiate(templateID, overrides)
	if err != nil {
		return "", err
	}
	return m.CreateConfiguration(cfg)
}

// ExportConfiguration serializes a configuration in the requested format.
// Only JSON export is implemented; requesting YAML fails loudly with an
// UnsupportedFormatError instead of silently degrading to JSON, even though
// YAML import is supported.
func (m *Manager) ExportConfiguration(id, format string) ([]byte, error) {
	cfg, err := m.GetConfiguration(id)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return json.MarshalIndent(cfg, "", "  ")
	default:
		return nil, &config.UnsupportedFormatError{Format: format, Supported: []string{FormatJSON}}
	}
}

// ImportConfiguration decodes an exported document, mints a new identity, and
// runs it through the create path. JSON documents are checked against the
// generated schema before decoding so structural defects surface with field
// paths instead of decode errors.
func (m *Manager) ImportConfiguration(data []byte, format string) (string, error) {
	var jsonData []byte
	switch format {
	case FormatJSON:
		if err := schema.ValidateDocument(data); err != nil {
			return "", err
		}
		jsonData = data
	case FormatYAML:
		converted, err := sigsyaml.YAMLToJSON(data)
		if err != nil {
			return "", &config.ParseError{Source: "import", Err: err}
		}
		jsonData = converted
	default:
		return "", &config.UnsupportedFormatError{Format: format, Supported: []string{FormatJSON, FormatYAML}}
	}

	var cfg config.TestConfiguration
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return "", &config.ParseError{Source: "import", Err: err}
	}

	// Identity never crosses an export/import boundary.
	cfg.ID = ""
	cfg.CreatedAt = time.Time{}
	cfg.UpdatedAt = time.Time{}
	return m.CreateConfiguration(cfg)
}

// GetConfiguration loads a configuration by ID.
func (m *Manager) GetConfiguration(id string) (*config.TestConfiguration, error) {
	data, err := m.store.Load(config.KindConfigurations, id)
	if err != nil {
		return nil, err
	}
	var cfg config.TestConfiguration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &config.ParseError{Source: "configuration " + id, Err: err}
	}
	return &cfg, nil
}

// ListConfigurations returns every stored configuration sorted by name, then
// ID for a stable order among same-named configurations.
func (m *Manager) ListConfigurations() ([]*config.TestConfiguration, error) {
	ids, err := m.store.List(config.KindConfigurations)
	if err != nil {
		return nil, err
	}

	configs := make([]*config.TestConfiguration, 0, len(ids))
	for _, id := range ids {
		cfg, err := m.GetConfiguration(id)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		if configs[i].Name != configs[j].Name {
			return configs[i].Name < configs[j].Name
		}
		return configs[i].ID < configs[j].ID
	})
	return configs, nil
}

// GetConfigurationsByTag returns configurations carrying the given tag.
func (m *Manager) GetConfigurationsByTag(tag string) ([]*config.TestConfiguration, error) {
	all, err := m.ListConfigurations()
	if err != nil {
		return nil, err
	}
	var matched []*config.TestConfiguration
	for _, cfg := range all {
		for _, t := range cfg.Tags {
			if t == tag {
				matched = append(matched, cfg)
				break
			}
		}
	}
	return matched, nil
}

// GetConfigurationsByEnvironment returns configurations targeting the given environment.
func (m *Manager) GetConfigurationsByEnvironment(env config.Environment) ([]*config.TestConfiguration, error) {
	all, err := m.ListConfigurations()
	if err != nil {
		return nil, err
	}
	var matched []*config.TestConfiguration
	for _, cfg := range all {
		if cfg.Environment == env {
			matched = append(matched, cfg)
		}
	}
	return matched, nil
}

// SaveTemplate persists a user-defined template and publishes TemplateCreated.
func (m *Manager) SaveTemplate(tmpl config.ConfigurationTemplate) error {
	if err := m.templates.Save(tmpl); err != nil {
		return err
	}
	m.bus.Publish(events.Event{Type: events.TemplateCreated, ID: tmpl.ID, Name: tmpl.Name})
	return nil
}

// DeleteTemplate removes a template and publishes TemplateDeleted.
func (m *Manager) DeleteTemplate(id string) error {
	tmpl, err := m.templates.Get(id)
	if err != nil {
		return err
	}
	if err := m.templates.Delete(id); err != nil {
		return err
	}
	m.bus.Publish(events.Event{Type: events.TemplateDeleted, ID: id, Name: tmpl.Name})
	return nil
}

// OnConfigurationCreated registers a handler for create events.
func (m *Manager) OnConfigurationCreated(h events.Handler) {
	m.bus.Subscribe(events.ConfigurationCreated, h)
}

// OnConfigurationUpdated registers a handler for update events.
func (m *Manager) OnConfigurationUpdated(h events.Handler) {
	m.bus.Subscribe(events.ConfigurationUpdated, h)
}

// OnConfigurationDeleted registers a handler for delete events.
func (m *Manager) OnConfigurationDeleted(h events.Handler) {
	m.bus.Subscribe(events.ConfigurationDeleted, h)
}

func (m *Manager) persist(cfg *config.TestConfiguration) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return m.store.Save(config.KindConfigurations, cfg.ID, data)
}
