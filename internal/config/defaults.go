package config

import "time"

const (
	// DefaultConcurrencyLevel is applied when a configuration omits concurrencyLevel.
	DefaultConcurrencyLevel = 10

	// DefaultTimeout is applied when a configuration omits timeout (10 minutes).
	DefaultTimeout = Millis(600000 * time.Millisecond)

	// DefaultRetryAttempts is applied when a configuration omits retryAttempts.
	DefaultRetryAttempts = 1

	// DefaultReportDir is where report artifacts are written unless overridden.
	DefaultReportDir = "./reports"
)

// DefaultReportingOptions returns the reporting settings for a fresh configuration.
func DefaultReportingOptions() ReportingOptions {
	return ReportingOptions{
		Formats:          []string{"json"},
		OutputDir:        DefaultReportDir,
		Verbose:          false,
		RetainReportDays: 30,
	}
}

// DefaultNotificationSettings returns the notification settings for a fresh configuration.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:   false,
		OnFailure: true,
		OnSuccess: false,
	}
}

// DefaultConfiguration is the one canonical zero-value configuration shape.
// Both the test command's no-config-file fallback and `config reset` use it,
// so the two paths can never diverge.
func DefaultConfiguration() TestConfiguration {
	return TestConfiguration{
		Name:                 "default",
		Description:          "Default test configuration",
		Environment:          EnvironmentDevelopment,
		TestSuites:           []TestSuiteConfig{},
		UserProfiles:         []UserProfile{},
		ConcurrencyLevel:     DefaultConcurrencyLevel,
		Timeout:              DefaultTimeout,
		RetryAttempts:        DefaultRetryAttempts,
		ReportingOptions:     DefaultReportingOptions(),
		NotificationSettings: DefaultNotificationSettings(),
	}
}

// ApplyDefaults fills omitted fields on a partial configuration in place.
// Only fields with zero values are touched.
func ApplyDefaults(cfg *TestConfiguration) {
	if cfg.Environment == "" {
		cfg.Environment = EnvironmentDevelopment
	}
	if cfg.ConcurrencyLevel == 0 {
		cfg.ConcurrencyLevel = DefaultConcurrencyLevel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = DefaultRetryAttempts
	}
	if cfg.TestSuites == nil {
		cfg.TestSuites = []TestSuiteConfig{}
	}
	if cfg.UserProfiles == nil {
		cfg.UserProfiles = []UserProfile{}
	}
	if len(cfg.ReportingOptions.Formats) == 0 && cfg.ReportingOptions.OutputDir == "" {
		cfg.ReportingOptions = DefaultReportingOptions()
	}
}
