package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testdeck/internal/config"
	"testdeck/internal/events"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.NewStore(t.TempDir()))
	require.NoError(t, err)
	return m
}

func sampleConfig() config.TestConfiguration {
	return config.TestConfiguration{
		Name:        "Nightly Regression",
		Environment: config.EnvironmentStaging,
		TestSuites: []config.TestSuiteConfig{
			{ID: "auth", Name: "Authentication", Enabled: true, Priority: 1},
			{ID: "booking", Name: "Booking", Enabled: true, Priority: 2, Dependencies: []string{"auth"}},
		},
		UserProfiles: []config.UserProfile{
			{ID: "p1", Name: "Passenger", Role: config.RolePassenger, Weight: 50},
			{ID: "p2", Name: "Driver", Role: config.RoleDriver, Weight: 50},
		},
		Tags: []string{"nightly"},
	}
}

func TestCreateConfiguration(t *testing.T) {
	m := newTestManager(t)

	id, err := m.CreateConfiguration(sampleConfig())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	cfg, err := m.GetConfiguration(id)
	require.NoError(t, err)
	assert.Equal(t, "Nightly Regression", cfg.Name)
	assert.Equal(t, config.DefaultConcurrencyLevel, cfg.ConcurrencyLevel)
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
	assert.False(t, cfg.CreatedAt.IsZero())
	assert.Equal(t, cfg.CreatedAt, cfg.UpdatedAt)
}

func TestCreateConfigurationRejectsInvalid(t *testing.T) {
	m := newTestManager(t)

	bad := sampleConfig()
	bad.Name = ""
	_, err := m.CreateConfiguration(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")

	// Nothing was persisted.
	all, err := m.ListConfigurations()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateConfiguration(t *testing.T) {
	m := newTestManager(t)

	id, err := m.CreateConfiguration(sampleConfig())
	require.NoError(t, err)
	before, err := m.GetConfiguration(id)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	err = m.UpdateConfiguration(id, map[string]interface{}{
		"description":      "updated",
		"concurrencyLevel": 25,
	})
	require.NoError(t, err)

	after, err := m.GetConfiguration(id)
	require.NoError(t, err)
	assert.Equal(t, "updated", after.Description)
	assert.Equal(t, 25, after.ConcurrencyLevel)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.CreatedAt.Unix(), after.CreatedAt.Unix())
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestUpdateConfigurationMissing(t *testing.T) {
	m := newTestManager(t)

	err := m.UpdateConfiguration("ghost", map[string]interface{}{"name": "x"})
	var notFound *config.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUpdateConfigurationRejectsInvalidMerge(t *testing.T) {
	m := newTestManager(t)

	id, err := m.CreateConfiguration(sampleConfig())
	require.NoError(t, err)

	err = m.UpdateConfiguration(id, map[string]interface{}{"concurrencyLevel": 0})
	require.Error(t, err)

	// Stored document is untouched.
	cfg, err := m.GetConfiguration(id)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConcurrencyLevel, cfg.ConcurrencyLevel)
}

func TestDeleteConfiguration(t *testing.T) {
	m := newTestManager(t)

	id, err := m.CreateConfiguration(sampleConfig())
	require.NoError(t, err)
	require.NoError(t, m.DeleteConfiguration(id))

	_, err = m.GetConfiguration(id)
	var notFound *config.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	err = m.DeleteConfiguration(id)
	assert.ErrorAs(t, err, &notFound)
}

func TestCloneConfiguration(t *testing.T) {
	m := newTestManager(t)

	id, err := m.CreateConfiguration(sampleConfig())
	require.NoError(t, err)

	cloneID, err := m.CloneConfiguration(id, "")
	require.NoError(t, err)
	require.NotEqual(t, id, cloneID)

	clone, err := m.GetConfiguration(cloneID)
	require.NoError(t, err)
	assert.Equal(t, "Nightly Regression (Copy)", clone.Name)
	assert.Len(t, clone.TestSuites, 2)

	named, err := m.CloneConfiguration(id, "Weekly")
	require.NoError(t, err)
	namedCfg, err := m.GetConfiguration(named)
	require.NoError(t, err)
	assert.Equal(t, "Weekly", namedCfg.Name)
}

func TestCreateFromTemplate(t *testing.T) {
	m := newTestManager(t)

	id, err := m.CreateFromTemplate("smoke-test", map[string]interface{}{"name": "X"})
	require.NoError(t, err)

	cfg, err := m.GetConfiguration(id)
	require.NoError(t, err)
	assert.Equal(t, "X", cfg.Name)
	assert.Equal(t, config.EnvironmentDevelopment, cfg.Environment)

	_, err = m.CreateFromTemplate("ghost", nil)
	var notFound *config.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestExportImportRoundTrip(t *testing.T) {
	m := newTestManager(t)

	id, err := m.CreateConfiguration(sampleConfig())
	require.NoError(t, err)

	data, err := m.ExportConfiguration(id, FormatJSON)
	require.NoError(t, err)

	importedID, err := m.ImportConfiguration(data, FormatJSON)
	require.NoError(t, err)
	require.NotEqual(t, id, importedID, "import mints a new identity")

	imported, err := m.GetConfiguration(importedID)
	require.NoError(t, err)
	assert.Equal(t, "Nightly Regression", imported.Name)
	assert.Len(t, imported.TestSuites, 2)
}

func TestExportYAMLUnsupported(t *testing.T) {
	m := newTestManager(t)

	id, err := m.CreateConfiguration(sampleConfig())
	require.NoError(t, err)

	_, err = m.ExportConfiguration(id, FormatYAML)
	var unsupported *config.UnsupportedFormatError
	assert.ErrorAs(t, err, &unsupported)
}

func TestImportYAML(t *testing.T) {
	m := newTestManager(t)

	doc := []byte(`
name: From YAML
environment: development
concurrencyLevel: 5
timeout: 120000
testSuites:
  - id: auth
    name: Authentication
    enabled: true
    priority: 1
userProfiles:
  - id: p1
    name: Passenger
    role: passenger
    weight: 100
`)
	id, err := m.ImportConfiguration(doc, FormatYAML)
	require.NoError(t, err)

	cfg, err := m.GetConfiguration(id)
	require.NoError(t, err)
	assert.Equal(t, "From YAML", cfg.Name)
	assert.Equal(t, 5, cfg.ConcurrencyLevel)
	assert.Equal(t, config.Millis(2*time.Minute), cfg.Timeout)
}

func TestImportRejectsMalformed(t *testing.T) {
	m := newTestManager(t)

	_, err := m.ImportConfiguration([]byte("{not json"), FormatJSON)
	require.Error(t, err)

	_, err = m.ImportConfiguration([]byte("{}"), "toml")
	var unsupported *config.UnsupportedFormatError
	assert.ErrorAs(t, err, &unsupported)
}

func TestQueries(t *testing.T) {
	m := newTestManager(t)

	_, err := m.CreateConfiguration(sampleConfig())
	require.NoError(t, err)

	dev := sampleConfig()
	dev.Name = "Dev Smoke"
	dev.Environment = config.EnvironmentDevelopment
	dev.Tags = []string{"smoke"}
	_, err = m.CreateConfiguration(dev)
	require.NoError(t, err)

	all, err := m.ListConfigurations()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Dev Smoke", all[0].Name, "list is sorted by name")

	tagged, err := m.GetConfigurationsByTag("nightly")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "Nightly Regression", tagged[0].Name)

	staged, err := m.GetConfigurationsByEnvironment(config.EnvironmentStaging)
	require.NoError(t, err)
	require.Len(t, staged, 1)
}

func TestTemplateLifecycle(t *testing.T) {
	m := newTestManager(t)

	var got []events.Event
	m.Events().Subscribe(events.TemplateCreated, func(e events.Event) { got = append(got, e) })
	m.Events().Subscribe(events.TemplateDeleted, func(e events.Event) { got = append(got, e) })

	custom := config.ConfigurationTemplate{
		ID:            "nightly",
		Name:          "Nightly",
		Category:      config.CategoryFull,
		Configuration: map[string]interface{}{"name": "Nightly"},
	}
	require.NoError(t, m.SaveTemplate(custom))
	require.NoError(t, m.DeleteTemplate("nightly"))

	require.Len(t, got, 2)
	assert.Equal(t, events.TemplateCreated, got[0].Type)
	assert.Equal(t, events.TemplateDeleted, got[1].Type)

	var notFound *config.NotFoundError
	assert.ErrorAs(t, m.DeleteTemplate("nightly"), &notFound)
}

func TestLifecycleEvents(t *testing.T) {
	m := newTestManager(t)

	var got []events.Event
	m.OnConfigurationCreated(func(e events.Event) { got = append(got, e) })
	m.OnConfigurationUpdated(func(e events.Event) { got = append(got, e) })
	m.OnConfigurationDeleted(func(e events.Event) { got = append(got, e) })

	id, err := m.CreateConfiguration(sampleConfig())
	require.NoError(t, err)
	require.NoError(t, m.UpdateConfiguration(id, map[string]interface{}{"description": "x"}))
	require.NoError(t, m.DeleteConfiguration(id))

	require.Len(t, got, 3)
	assert.Equal(t, events.ConfigurationCreated, got[0].Type)
	assert.Equal(t, events.ConfigurationUpdated, got[1].Type)
	assert.Equal(t, events.ConfigurationDeleted, got[2].Type)
	for _, e := range got {
		assert.Equal(t, id, e.ID)
	}
}
