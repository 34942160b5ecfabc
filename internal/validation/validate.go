// Package validation implements the structural validation engine for test
// configurations. Validate is a pure function: it performs no I/O, mutates
// nothing, and running it twice on the same document yields identical results.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"testdeck/internal/config"
	"testdeck/internal/dependency"
)

// Severity grades validation errors.
type Severity string

const (
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Error is a structural defect that blocks persistence.
type Error struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (e Error) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is an advisory finding that never blocks persistence.
type Warning struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// Result aggregates all findings of one validation pass.
type Result struct {
	IsValid  bool      `json:"isValid"`
	Errors   []Error   `json:"errors"`
	Warnings []Warning `json:"warnings"`
}

// Err converts a failed result into a single error aggregating every message,
// for callers that treat validation failure as fatal. Returns nil when valid.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	messages := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		messages[i] = e.String()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

const (
	// weightTolerance is the allowed deviation of the profile weight sum from 100.
	weightTolerance = 0.01

	// concurrencyAdvisoryLimit triggers a performance warning above this value.
	concurrencyAdvisoryLimit = 100

	// timeoutAdvisoryLimit triggers a performance warning above one hour.
	timeoutAdvisoryLimit = time.Hour
)

// Validate checks a full configuration and accumulates every finding; rules
// never short-circuit, so one pass reports everything at once.
func Validate(cfg *config.TestConfiguration) Result {
	result := Result{
		Errors:   []Error{},
		Warnings: []Warning{},
	}

	validateScalars(cfg, &result)
	validateSuites(cfg, &result)
	validateProfiles(cfg, &result)
	validateAdvisories(cfg, &result)

	result.IsValid = len(result.Errors) == 0
	return result
}

func validateScalars(cfg *config.TestConfiguration, result *Result) {
	if strings.TrimSpace(cfg.Name) == "" {
		result.addError("name", "name is required", SeverityError)
	}
	if cfg.Environment == "" {
		result.addError("environment", "environment is required", SeverityError)
	} else {
		valid := false
		for _, env := range config.Environments() {
			if string(cfg.Environment) == env {
				valid = true
				break
			}
		}
		if !valid {
			result.addError("environment",
				fmt.Sprintf("must be one of: %s", strings.Join(config.Environments(), ", ")),
				SeverityError)
		}
	}
	if cfg.ConcurrencyLevel <= 0 {
		result.addError("concurrencyLevel", "must be greater than 0", SeverityError)
	}
	if cfg.Timeout <= 0 {
		result.addError("timeout", "must be greater than 0", SeverityError)
	}
	if cfg.RetryAttempts < 0 {
		result.addError("retryAttempts", "must not be negative", SeverityError)
	}
	if !cfg.UpdatedAt.IsZero() && !cfg.CreatedAt.IsZero() && cfg.UpdatedAt.Before(cfg.CreatedAt) {
		result.addError("updatedAt", "must not be before createdAt", SeverityError)
	}
}

func validateSuites(cfg *config.TestConfiguration, result *Result) {
	if len(cfg.TestSuites) == 0 {
		result.addWarning("testSuites", "configuration has no test suites",
			"add at least one suite or the run will do nothing")
		return
	}

	// Duplicate suite IDs, all of them in one error.
	seen := make(map[string]int)
	for _, suite := range cfg.TestSuites {
		seen[suite.ID]++
	}
	var duplicates []string
	for id, count := range seen {
		if count > 1 {
			duplicates = append(duplicates, id)
		}
	}
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		result.addError("testSuites",
			fmt.Sprintf("duplicate suite ids: %s", strings.Join(duplicates, ", ")),
			SeverityError)
	}

	graph := dependency.New()
	for _, suite := range cfg.TestSuites {
		graph.Add(suite.ID, suite.Dependencies)
	}

	unknown := graph.UnknownRefs()
	if len(unknown) > 0 {
		var ids []string
		for id := range unknown {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			result.addError(fmt.Sprintf("testSuites.%s.dependencies", id),
				fmt.Sprintf("references unknown suite ids: %s", strings.Join(unknown[id], ", ")),
				SeverityError)
		}
	}

	if cycle := graph.FindCycle(); cycle != nil {
		result.addError("testSuites",
			fmt.Sprintf("dependency cycle detected: %s", strings.Join(cycle, " -> ")),
			SeverityCritical)
	}
}

func validateProfiles(cfg *config.TestConfiguration, result *Result) {
	if len(cfg.UserProfiles) == 0 {
		result.addWarning("userProfiles", "configuration has no user profiles",
			"add weighted profiles to simulate a realistic population mix")
		return
	}

	seen := make(map[string]int)
	for _, profile := range cfg.UserProfiles {
		seen[profile.ID]++
	}
	var duplicates []string
	for id, count := range seen {
		if count > 1 {
			duplicates = append(duplicates, id)
		}
	}
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		result.addError("userProfiles",
			fmt.Sprintf("duplicate profile ids: %s", strings.Join(duplicates, ", ")),
			SeverityError)
	}

	var sum float64
	for _, profile := range cfg.UserProfiles {
		sum += profile.Weight
	}
	if math.Abs(sum-100) > weightTolerance {
		result.addWarning("userProfiles",
			fmt.Sprintf("profile weights sum to %g, expected 100", sum),
			"adjust profile weights so they sum to 100")
	}
}

func validateAdvisories(cfg *config.TestConfiguration, result *Result) {
	if cfg.ConcurrencyLevel > concurrencyAdvisoryLimit {
		result.addWarning("concurrencyLevel",
			fmt.Sprintf("concurrency level %d may overload the target environment", cfg.ConcurrencyLevel),
			fmt.Sprintf("consider a value at or below %d", concurrencyAdvisoryLimit))
	}
	if cfg.Timeout.Duration() > timeoutAdvisoryLimit {
		result.addWarning("timeout",
			fmt.Sprintf("timeout of %v exceeds one hour", cfg.Timeout.Duration()),
			"long timeouts can mask hung runs")
	}
}

func (r *Result) addError(field, message string, severity Severity) {
	r.Errors = append(r.Errors, Error{Field: field, Message: message, Severity: severity})
}

func (r *Result) addWarning(field, message, suggestion string) {
	r.Warnings = append(r.Warnings, Warning{Field: field, Message: message, Suggestion: suggestion})
}
