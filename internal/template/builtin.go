package template

import "testdeck/internal/config"

// Built-in template IDs.
const (
	BuiltinSmoke       = "smoke-test"
	BuiltinRegression  = "regression-test"
	BuiltinPerformance = "performance-test"
)

// BuiltinTemplates returns the templates shipped with the binary. Each base
// configuration is a complete partial document; instantiation shallow-merges
// caller overrides over these keys, replacing whole nested objects.
func BuiltinTemplates() []config.ConfigurationTemplate {
	return []config.ConfigurationTemplate{
		{
			ID:          BuiltinSmoke,
			Name:        "Smoke Test",
			Description: "Fast sanity checks for the critical booking path",
			Category:    config.CategorySmoke,
			Configuration: map[string]interface{}{
				"name":             "Smoke Test",
				"description":      "Fast sanity checks for the critical booking path",
				"environment":      string(config.EnvironmentDevelopment),
				"concurrencyLevel": 5,
				"timeout":          120000,
				"retryAttempts":    0,
				"testSuites": []interface{}{
					suite("auth", "Authentication", 1, nil, map[string]interface{}{
						"tags": []interface{}{"critical", "smoke"},
					}),
					suite("booking", "Ride Booking", 2, []interface{}{"auth"}, map[string]interface{}{
						"tags": []interface{}{"critical", "smoke"},
					}),
				},
				"userProfiles": []interface{}{
					profile("passenger-default", "Passenger", string(config.RolePassenger), 70),
					profile("driver-default", "Driver", string(config.RoleDriver), 30),
				},
				"reportingOptions": map[string]interface{}{
					"formats":          []interface{}{"json"},
					"outputDir":        config.DefaultReportDir,
					"verbose":          false,
					"retainReportDays": 7,
				},
				"notificationSettings": map[string]interface{}{
					"enabled":   false,
					"onFailure": true,
					"onSuccess": false,
				},
				"tags": []interface{}{"smoke"},
			},
		},
		{
			ID:          BuiltinRegression,
			Name:        "Regression Test",
			Description: "Full functional coverage across all user flows",
			Category:    config.CategoryRegression,
			Configuration: map[string]interface{}{
				"name":             "Regression Test",
				"description":      "Full functional coverage across all user flows",
				"environment":      string(config.EnvironmentStaging),
				"concurrencyLevel": 10,
				"timeout":          600000,
				"retryAttempts":    1,
				"testSuites": []interface{}{
					suite("auth", "Authentication", 1, nil, nil),
					suite("booking", "Ride Booking", 2, []interface{}{"auth"}, nil),
					suite("payments", "Payments", 3, []interface{}{"booking"}, nil),
					suite("notifications", "Notifications", 4, []interface{}{"booking"}, nil),
					suite("dashboard", "Operator Dashboard", 5, nil, nil),
				},
				"userProfiles": []interface{}{
					profile("passenger-default", "Passenger", string(config.RolePassenger), 55),
					profile("driver-default", "Driver", string(config.RoleDriver), 30),
					profile("operator-default", "Operator", string(config.RoleOperator), 10),
					profile("admin-default", "Admin", string(config.RoleAdmin), 5),
				},
				"reportingOptions": map[string]interface{}{
					"formats":          []interface{}{"json", "html", "junit"},
					"outputDir":        config.DefaultReportDir,
					"verbose":          true,
					"retainReportDays": 30,
				},
				"notificationSettings": map[string]interface{}{
					"enabled":   true,
					"channels":  []interface{}{"email"},
					"onFailure": true,
					"onSuccess": false,
				},
				"tags": []interface{}{"regression"},
			},
		},
		{
			ID:          BuiltinPerformance,
			Name:        "Performance Test",
			Description: "High-concurrency load profile against staging",
			Category:    config.CategoryPerformance,
			Configuration: map[string]interface{}{
				"name":             "Performance Test",
				"description":      "High-concurrency load profile against staging",
				"environment":      string(config.EnvironmentStaging),
				"concurrencyLevel": 100,
				"timeout":          1800000,
				"retryAttempts":    0,
				"testSuites": []interface{}{
					suite("booking-load", "Booking Load", 1, nil, map[string]interface{}{
						"tags":           []interface{}{"performance"},
						"rampUpSeconds":  60,
						"steadySeconds":  600,
						"targetRideRate": 50,
					}),
					suite("tracking-load", "Live Tracking Load", 2, []interface{}{"booking-load"}, map[string]interface{}{
						"tags": []interface{}{"performance"},
					}),
				},
				"userProfiles": []interface{}{
					profile("passenger-peak", "Peak Passenger", string(config.RolePassenger), 80),
					profile("driver-peak", "Peak Driver", string(config.RoleDriver), 20),
				},
				"reportingOptions": map[string]interface{}{
					"formats":          []interface{}{"json", "html"},
					"outputDir":        config.DefaultReportDir,
					"verbose":          false,
					"retainReportDays": 14,
				},
				"notificationSettings": map[string]interface{}{
					"enabled":   true,
					"channels":  []interface{}{"slack"},
					"onFailure": true,
					"onSuccess": true,
				},
				"tags": []interface{}{"performance"},
			},
		},
	}
}

func suite(id, name string, priority int, deps []interface{}, params map[string]interface{}) map[string]interface{} {
	s := map[string]interface{}{
		"id":       id,
		"name":     name,
		"enabled":  true,
		"priority": priority,
	}
	if deps != nil {
		s["dependencies"] = deps
	}
	if params != nil {
		s["parameters"] = params
	}
	return s
}

func profile(id, name, role string, weight float64) map[string]interface{} {
	return map[string]interface{}{
		"id":     id,
		"name":   name,
		"role":   role,
		"weight": weight,
	}
}
