package validation

import (
	"strings"
	"testing"
	"time"

	"testdeck/internal/config"
)

func validConfig() config.TestConfiguration {
	return config.TestConfiguration{
		ID:               "cfg-1",
		Name:             "Smoke",
		Environment:      config.EnvironmentDevelopment,
		ConcurrencyLevel: 5,
		Timeout:          config.Millis(2 * time.Minute),
		RetryAttempts:    1,
		TestSuites: []config.TestSuiteConfig{
			{ID: "auth", Name: "Authentication", Enabled: true, Priority: 1},
			{ID: "booking", Name: "Booking", Enabled: true, Priority: 2, Dependencies: []string{"auth"}},
		},
		UserProfiles: []config.UserProfile{
			{ID: "p1", Name: "Passenger", Role: config.RolePassenger, Weight: 60},
			{ID: "p2", Name: "Driver", Role: config.RoleDriver, Weight: 40},
		},
	}
}

func findError(result Result, field string) *Error {
	for i := range result.Errors {
		if result.Errors[i].Field == field {
			return &result.Errors[i]
		}
	}
	return nil
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	cfg := validConfig()
	result := Validate(&cfg)
	if !result.IsValid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
	if result.Err() != nil {
		t.Errorf("Err() on valid result = %v", result.Err())
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	cfg := validConfig()
	cfg.TestSuites[1].Dependencies = []string{"booking"}

	first := Validate(&cfg)
	second := Validate(&cfg)
	if len(first.Errors) != len(second.Errors) || len(first.Warnings) != len(second.Warnings) {
		t.Errorf("results differ between runs: %v vs %v", first, second)
	}
}

func TestValidateScalars(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.TestConfiguration)
		field  string
	}{
		{"empty name", func(c *config.TestConfiguration) { c.Name = "  " }, "name"},
		{"missing environment", func(c *config.TestConfiguration) { c.Environment = "" }, "environment"},
		{"bad environment", func(c *config.TestConfiguration) { c.Environment = "qa" }, "environment"},
		{"zero concurrency", func(c *config.TestConfiguration) { c.ConcurrencyLevel = 0 }, "concurrencyLevel"},
		{"zero timeout", func(c *config.TestConfiguration) { c.Timeout = 0 }, "timeout"},
		{"negative retries", func(c *config.TestConfiguration) { c.RetryAttempts = -1 }, "retryAttempts"},
		{"updatedAt before createdAt", func(c *config.TestConfiguration) {
			c.CreatedAt = time.Now()
			c.UpdatedAt = c.CreatedAt.Add(-time.Hour)
		}, "updatedAt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			result := Validate(&cfg)
			if result.IsValid {
				t.Fatal("expected invalid result")
			}
			if findError(result, tt.field) == nil {
				t.Errorf("expected error on field %q, got %v", tt.field, result.Errors)
			}
		})
	}
}

func TestValidateDuplicateSuiteIDs(t *testing.T) {
	cfg := validConfig()
	cfg.TestSuites = append(cfg.TestSuites,
		config.TestSuiteConfig{ID: "auth", Name: "Auth Again", Enabled: true},
		config.TestSuiteConfig{ID: "booking", Name: "Booking Again", Enabled: true})

	result := Validate(&cfg)
	e := findError(result, "testSuites")
	if e == nil {
		t.Fatalf("expected duplicate error, got %v", result.Errors)
	}
	// All duplicates in one error, sorted.
	if !strings.Contains(e.Message, "auth, booking") {
		t.Errorf("message %q should list both duplicates in order", e.Message)
	}
}

func TestValidateUnknownDependency(t *testing.T) {
	cfg := validConfig()
	cfg.TestSuites[1].Dependencies = []string{"ghost"}

	result := Validate(&cfg)
	e := findError(result, "testSuites.booking.dependencies")
	if e == nil {
		t.Fatalf("expected unknown-ref error, got %v", result.Errors)
	}
	if !strings.Contains(e.Message, "ghost") {
		t.Errorf("message %q should name the unknown id", e.Message)
	}
}

func TestValidateDependencyCycle(t *testing.T) {
	cfg := validConfig()
	cfg.TestSuites[0].Dependencies = []string{"booking"}

	result := Validate(&cfg)
	e := findError(result, "testSuites")
	if e == nil {
		t.Fatalf("expected cycle error, got %v", result.Errors)
	}
	if e.Severity != SeverityCritical {
		t.Errorf("cycle severity = %s, want critical", e.Severity)
	}
	if !strings.Contains(e.Message, " -> ") {
		t.Errorf("message %q should contain the cycle path", e.Message)
	}
}

func TestValidateEmptySuitesWarns(t *testing.T) {
	cfg := validConfig()
	cfg.TestSuites = nil

	result := Validate(&cfg)
	if !result.IsValid {
		t.Fatalf("empty suites must not be an error: %v", result.Errors)
	}
	if len(result.Warnings) == 0 || result.Warnings[0].Field != "testSuites" {
		t.Errorf("expected testSuites warning, got %v", result.Warnings)
	}
}

func TestValidateProfileWeights(t *testing.T) {
	cfg := validConfig()
	cfg.UserProfiles[1].Weight = 60 // 60 + 60 = 120

	result := Validate(&cfg)
	if !result.IsValid {
		t.Fatalf("weight imbalance must not be an error: %v", result.Errors)
	}
	var found bool
	for _, w := range result.Warnings {
		if w.Field == "userProfiles" && strings.Contains(w.Message, "120") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected weight warning stating actual sum, got %v", result.Warnings)
	}

	// Within tolerance: no warning.
	cfg.UserProfiles[1].Weight = 40.005
	result = Validate(&cfg)
	for _, w := range result.Warnings {
		if w.Field == "userProfiles" {
			t.Errorf("weights within tolerance should not warn: %v", w)
		}
	}
}

func TestValidateDuplicateProfileIDs(t *testing.T) {
	cfg := validConfig()
	cfg.UserProfiles[1].ID = "p1"

	result := Validate(&cfg)
	if findError(result, "userProfiles") == nil {
		t.Errorf("expected duplicate profile error, got %v", result.Errors)
	}
}

func TestValidateAdvisories(t *testing.T) {
	cfg := validConfig()
	cfg.ConcurrencyLevel = 500
	cfg.Timeout = config.Millis(2 * time.Hour)

	result := Validate(&cfg)
	if !result.IsValid {
		t.Fatalf("advisories must not block: %v", result.Errors)
	}
	fields := make(map[string]bool)
	for _, w := range result.Warnings {
		fields[w.Field] = true
	}
	if !fields["concurrencyLevel"] || !fields["timeout"] {
		t.Errorf("expected concurrency and timeout advisories, got %v", result.Warnings)
	}
}

func TestResultErrAggregatesMessages(t *testing.T) {
	cfg := validConfig()
	cfg.Name = ""
	cfg.ConcurrencyLevel = 0

	err := Validate(&cfg).Err()
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "name") || !strings.Contains(msg, "concurrencyLevel") {
		t.Errorf("aggregated error %q should mention every failing field", msg)
	}
}
