// Package report implements the report engine: loading run results,
// merging and comparing them, and rendering artifacts in several formats.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"testdeck/internal/config"
)

// Test case status values.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// TestRunResult is the aggregate outcome of one test run. It is the unit the
// report engine loads, merges, compares, and renders.
type TestRunResult struct {
	TotalTests int           `json:"totalTests"`
	Passed     int           `json:"passed"`
	Failures   int           `json:"failures"`
	Errors     int           `json:"errors"`
	Skipped    int           `json:"skipped"`
	Duration   config.Millis `json:"duration"`
	Suites     []SuiteResult `json:"suites"`
	Success    bool          `json:"success"`
	Timestamp  time.Time     `json:"timestamp"`
}

// SuiteResult is the outcome of one suite within a run.
type SuiteResult struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Passed    int              `json:"passed"`
	Failures  int              `json:"failures"`
	Errors    int              `json:"errors"`
	Skipped   int              `json:"skipped"`
	Duration  config.Millis    `json:"duration"`
	TestCases []TestCaseResult `json:"testCases,omitempty"`
}

// TestCaseResult is one test case outcome inside a suite.
type TestCaseResult struct {
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Duration config.Millis `json:"duration"`
	Message  string        `json:"message,omitempty"`
	Stack    string        `json:"stack,omitempty"`
}

// SuccessRate returns passed tests as a percentage of total, 0 for an empty run.
func (r *TestRunResult) SuccessRate() float64 {
	if r.TotalTests == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.TotalTests) * 100
}

// Load reads a run result from a JSON file.
func Load(path string) (*TestRunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &config.IOError{Op: "read", Path: path, Err: err}
	}
	var result TestRunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &config.ParseError{Source: path, Err: err}
	}
	return &result, nil
}

// Validate checks internal consistency of a loaded result.
func (r *TestRunResult) Validate() error {
	if r.TotalTests < 0 || r.Passed < 0 || r.Failures < 0 || r.Errors < 0 || r.Skipped < 0 {
		return fmt.Errorf("result counters must not be negative")
	}
	if sum := r.Passed + r.Failures + r.Errors + r.Skipped; sum > r.TotalTests {
		return fmt.Errorf("result counters sum to %d but totalTests is %d", sum, r.TotalTests)
	}
	return nil
}
