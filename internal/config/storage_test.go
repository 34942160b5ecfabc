package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	data := []byte(`{"name":"smoke"}`)
	if err := store.Save(KindConfigurations, "cfg-1", data); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(KindConfigurations, "cfg-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != string(data) {
		t.Errorf("Load returned %q, want %q", loaded, data)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load(KindConfigurations, "absent")
	if err == nil {
		t.Fatal("expected error for missing document")
	}
	if _, ok := err.(*NotFoundError); !ok {
		t.Errorf("expected NotFoundError, got %T", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Save(KindTemplates, "tpl-1", []byte("{}")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(KindTemplates, "tpl-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Exists(KindTemplates, "tpl-1") {
		t.Error("document still exists after Delete")
	}
	if err := store.Delete(KindTemplates, "tpl-1"); err == nil {
		t.Error("expected error deleting missing document")
	}
}

func TestStoreList(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Save(KindConfigurations, id, []byte("{}")); err != nil {
			t.Fatalf("Save %s failed: %v", id, err)
		}
	}

	ids, err := store.List(KindConfigurations)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("List returned %d ids, want 3", len(ids))
	}

	// Kinds are isolated namespaces.
	templates, err := store.List(KindTemplates)
	if err != nil {
		t.Fatalf("List templates failed: %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("List(templates) returned %d ids, want 0", len(templates))
	}
}

func TestStoreSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Save(KindConfigurations, "cfg", []byte("first")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(KindConfigurations, "cfg", []byte("second")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, _ := store.Load(KindConfigurations, "cfg")
	if string(loaded) != "second" {
		t.Errorf("Load returned %q after overwrite, want %q", loaded, "second")
	}

	// No temp file residue after a successful write.
	matches, _ := filepath.Glob(filepath.Join(dir, KindConfigurations, ".tmp-*"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{"with space", "with_space"},
		{"a/b\\c", "a_b_c"},
		{"trailing  ", "trailing"},
		{"", "unnamed"},
		{"***", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.expected {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLoadFileOrDefault(t *testing.T) {
	dir := t.TempDir()

	// Missing file falls back to the canonical default.
	cfg, err := LoadFileOrDefault(filepath.Join(dir, "absent.json"))
	if err != nil {
		t.Fatalf("LoadFileOrDefault failed: %v", err)
	}
	if cfg.ConcurrencyLevel != DefaultConcurrencyLevel {
		t.Errorf("default concurrency = %d, want %d", cfg.ConcurrencyLevel, DefaultConcurrencyLevel)
	}

	// A broken file must not silently degrade to defaults.
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileOrDefault(broken); err == nil {
		t.Error("expected parse error for broken file")
	}
}
