package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Environment identifies the target deployment environment for a test run.
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentStaging     Environment = "staging"
	EnvironmentProduction  Environment = "production"
)

// Environments lists all valid environment values.
func Environments() []string {
	return []string{
		string(EnvironmentDevelopment),
		string(EnvironmentStaging),
		string(EnvironmentProduction),
	}
}

// Role identifies the simulated user role of a UserProfile.
type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
	RoleOperator  Role = "operator"
	RoleAdmin     Role = "admin"
)

// TemplateCategory categorizes configuration templates.
type TemplateCategory string

const (
	CategorySmoke       TemplateCategory = "smoke"
	CategoryRegression  TemplateCategory = "regression"
	CategoryPerformance TemplateCategory = "performance"
	CategorySecurity    TemplateCategory = "security"
	CategoryFull        TemplateCategory = "full"
)

// Millis is a duration that marshals to/from JSON as integer milliseconds.
// Configuration documents on disk carry timeouts in milliseconds.
type Millis time.Duration

// Duration returns the value as a time.Duration.
func (m Millis) Duration() time.Duration { return time.Duration(m) }

// FromDuration converts a time.Duration to Millis.
func FromDuration(d time.Duration) Millis { return Millis(d) }

// MarshalJSON encodes the duration as integer milliseconds.
func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(m).Milliseconds())
}

// UnmarshalJSON decodes integer milliseconds.
func (m *Millis) UnmarshalJSON(data []byte) error {
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("timeout must be integer milliseconds: %w", err)
	}
	*m = Millis(time.Duration(ms) * time.Millisecond)
	return nil
}

// TestConfiguration is the unit of work: a named, validated bundle of test
// suites, simulated user profiles, and execution/reporting settings.
//
// ID is immutable after creation. Mutations go through the Manager, which
// preserves ID and CreatedAt and bumps UpdatedAt.
type TestConfiguration struct {
	ID                   string               `json:"id" yaml:"id"`
	Name                 string               `json:"name" yaml:"name"`
	Description          string               `json:"description,omitempty" yaml:"description,omitempty"`
	Environment          Environment          `json:"environment" yaml:"environment"`
	TestSuites           []TestSuiteConfig    `json:"testSuites" yaml:"testSuites"`
	UserProfiles         []UserProfile        `json:"userProfiles" yaml:"userProfiles"`
	ConcurrencyLevel     int                  `json:"concurrencyLevel" yaml:"concurrencyLevel"`
	Timeout              Millis               `json:"timeout" yaml:"timeout"`
	RetryAttempts        int                  `json:"retryAttempts" yaml:"retryAttempts"`
	ReportingOptions     ReportingOptions     `json:"reportingOptions" yaml:"reportingOptions"`
	AutoFixEnabled       bool                 `json:"autoFixEnabled" yaml:"autoFixEnabled"`
	NotificationSettings NotificationSettings `json:"notificationSettings" yaml:"notificationSettings"`
	CreatedAt            time.Time            `json:"createdAt" yaml:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt" yaml:"updatedAt"`
	Tags                 []string             `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// TestSuiteConfig describes one suite inside a configuration. Dependencies
// name other suite IDs in the same configuration that must complete first;
// the resulting directed graph must be acyclic. Priority orders execution
// (lower runs first) and is advisory only.
type TestSuiteConfig struct {
	ID            string                 `json:"id" yaml:"id"`
	Name          string                 `json:"name" yaml:"name"`
	Enabled       bool                   `json:"enabled" yaml:"enabled"`
	Priority      int                    `json:"priority" yaml:"priority"`
	Parameters    map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Dependencies  []string               `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Timeout       *Millis                `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	RetryAttempts *int                   `json:"retryAttempts,omitempty" yaml:"retryAttempts,omitempty"`
}

// SuiteTags extracts the optional "tags" entry from the suite parameter bag.
// Suites carry tags inside Parameters so that dynamic suite metadata stays in
// one place; the tag filter of the test command matches against these.
func (s TestSuiteConfig) SuiteTags() []string {
	raw, ok := s.Parameters["tags"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		var tags []string
		for _, item := range v {
			if str, ok := item.(string); ok {
				tags = append(tags, str)
			}
		}
		return tags
	}
	return nil
}

// UserProfile is a weighted synthetic population descriptor used to simulate
// realistic usage mixes during a run. Weight is the share (0-100) of the
// simulated population; the sum over all profiles should be 100.
type UserProfile struct {
	ID               string           `json:"id" yaml:"id"`
	Name             string           `json:"name" yaml:"name"`
	Role             Role             `json:"role" yaml:"role"`
	Demographics     Demographics     `json:"demographics,omitempty" yaml:"demographics,omitempty"`
	Preferences      Preferences      `json:"preferences,omitempty" yaml:"preferences,omitempty"`
	BehaviorPatterns BehaviorPatterns `json:"behaviorPatterns,omitempty" yaml:"behaviorPatterns,omitempty"`
	Weight           float64          `json:"weight" yaml:"weight"`
}

// Demographics describes the simulated population slice of a profile.
type Demographics struct {
	AgeRange string `json:"ageRange,omitempty" yaml:"ageRange,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Device   string `json:"device,omitempty" yaml:"device,omitempty"`
}

// Preferences holds per-profile product preferences.
type Preferences struct {
	Language      string `json:"language,omitempty" yaml:"language,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty" yaml:"paymentMethod,omitempty"`
	RideType      string `json:"rideType,omitempty" yaml:"rideType,omitempty"`
}

// BehaviorPatterns tunes the simulated activity of a profile.
type BehaviorPatterns struct {
	SessionsPerDay   int     `json:"sessionsPerDay,omitempty" yaml:"sessionsPerDay,omitempty"`
	BookingRate      float64 `json:"bookingRate,omitempty" yaml:"bookingRate,omitempty"`
	CancellationRate float64 `json:"cancellationRate,omitempty" yaml:"cancellationRate,omitempty"`
	PeakHours        bool    `json:"peakHours,omitempty" yaml:"peakHours,omitempty"`
}

// ReportingOptions controls report artifact generation for a run.
type ReportingOptions struct {
	Formats          []string `json:"formats" yaml:"formats"`
	OutputDir        string   `json:"outputDir" yaml:"outputDir"`
	Verbose          bool     `json:"verbose" yaml:"verbose"`
	IncludeScreens   bool     `json:"includeScreenshots" yaml:"includeScreenshots"`
	RetainReportDays int      `json:"retainReportDays" yaml:"retainReportDays"`
}

// NotificationSettings controls where run summaries are announced.
type NotificationSettings struct {
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	Channels   []string `json:"channels,omitempty" yaml:"channels,omitempty"`
	OnFailure  bool     `json:"onFailure" yaml:"onFailure"`
	OnSuccess  bool     `json:"onSuccess" yaml:"onSuccess"`
	Recipients []string `json:"recipients,omitempty" yaml:"recipients,omitempty"`
}

// ConfigurationTemplate is a pre-built partial configuration used as a
// starting point for new configurations.
//
// Configuration holds the template base as a generic document. Instantiation
// shallow-merges caller overrides over it: an override replaces the whole
// top-level value, nested objects are not deep-merged. This is a documented
// contract so templates can guarantee complete nested defaults.
type ConfigurationTemplate struct {
	ID            string                 `json:"id" yaml:"id"`
	Name          string                 `json:"name" yaml:"name"`
	Description   string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Category      TemplateCategory       `json:"category" yaml:"category"`
	Configuration map[string]interface{} `json:"configuration" yaml:"configuration"`
}
