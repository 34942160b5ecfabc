package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"testdeck/pkg/logging"
)

// Entity kinds managed by the Store. Templates live under a sub-directory so
// template IDs can never collide with configuration IDs.
const (
	KindConfigurations = "configurations"
	KindTemplates      = "templates"
)

// Store provides document storage as one JSON file per document under a
// configuration directory. It is the only component that touches the disk
// layout; the Manager, Validation Engine, and Command Layer talk to it
// through Save/Load/Delete/List so a key-value store could be substituted.
//
// Writes are atomic (write-temp-then-rename) so a concurrent reader never
// observes a partial document, even though the design assumes one writer.
type Store struct {
	mu      sync.RWMutex
	baseDir string
}

// NewStore creates a Store rooted at the given directory.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// DefaultStoreDir returns the default store location (~/.config/testdeck).
func DefaultStoreDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "testdeck"), nil
}

// BaseDir returns the directory the store is rooted at.
func (s *Store) BaseDir() string { return s.baseDir }

// Save stores data for the given kind and id, replacing any existing file
// atomically.
func (s *Store) Save(kind, id string, data []byte) error {
	if kind == "" {
		return fmt.Errorf("kind cannot be empty")
	}
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	targetDir := filepath.Join(s.baseDir, kind)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return &IOError{Op: "write", Path: targetDir, Err: err}
	}

	filePath := filepath.Join(targetDir, sanitizeFilename(id)+".json")
	if err := atomicWrite(filePath, data); err != nil {
		return err
	}

	logging.Debug("Store", "Saved %s/%s to %s", kind, id, filePath)
	return nil
}

// Load retrieves the document for the given kind and id.
func (s *Store) Load(kind, id string) ([]byte, error) {
	if kind == "" {
		return nil, fmt.Errorf("kind cannot be empty")
	}
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := filepath.Join(s.baseDir, kind, sanitizeFilename(id)+".json")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(kindSingular(kind), id)
		}
		return nil, &IOError{Op: "read", Path: filePath, Err: err}
	}
	return data, nil
}

// Exists reports whether a document exists for the given kind and id.
func (s *Store) Exists(kind, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := filepath.Join(s.baseDir, kind, sanitizeFilename(id)+".json")
	_, err := os.Stat(filePath)
	return err == nil
}

// Delete removes the backing file for the given kind and id.
func (s *Store) Delete(kind, id string) error {
	if kind == "" {
		return fmt.Errorf("kind cannot be empty")
	}
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := filepath.Join(s.baseDir, kind, sanitizeFilename(id)+".json")
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return NewNotFoundError(kindSingular(kind), id)
	}
	if err := os.Remove(filePath); err != nil {
		return &IOError{Op: "delete", Path: filePath, Err: err}
	}

	logging.Debug("Store", "Deleted %s/%s", kind, id)
	return nil
}

// List returns all document IDs for the given kind.
func (s *Store) List(kind string) ([]string, error) {
	if kind == "" {
		return nil, fmt.Errorf("kind cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dirPath := filepath.Join(s.baseDir, kind)
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return []string{}, nil
	}

	matches, err := filepath.Glob(filepath.Join(dirPath, "*.json"))
	if err != nil {
		return nil, &IOError{Op: "list", Path: dirPath, Err: err}
	}

	var ids []string
	for _, filePath := range matches {
		basename := filepath.Base(filePath)
		ids = append(ids, strings.TrimSuffix(basename, filepath.Ext(basename)))
	}
	return ids, nil
}

// atomicWrite writes data to a temp file in the target directory and renames
// it over the destination. Rename within one directory is atomic on POSIX
// filesystems.
func atomicWrite(filePath string, data []byte) error {
	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &IOError{Op: "write", Path: filePath, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Op: "write", Path: filePath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "write", Path: filePath, Err: err}
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "write", Path: filePath, Err: err}
	}
	return nil
}

func kindSingular(kind string) string {
	switch kind {
	case KindConfigurations:
		return "configuration"
	case KindTemplates:
		return "template"
	default:
		return strings.TrimSuffix(kind, "s")
	}
}

// sanitizeFilename ensures the id is safe for filesystem operations.
func sanitizeFilename(name string) string {
	sanitized := name
	for _, ch := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		sanitized = strings.ReplaceAll(sanitized, ch, "_")
	}
	sanitized = strings.ReplaceAll(strings.Trim(sanitized, " _"), " ", "_")
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "unnamed"
	}
	return sanitized
}
