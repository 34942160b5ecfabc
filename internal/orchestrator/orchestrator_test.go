package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testdeck/internal/config"
	"testdeck/internal/report"
)

func planConfig() config.TestConfiguration {
	return config.TestConfiguration{
		ID:               "cfg-1",
		Name:             "Regression",
		Environment:      config.EnvironmentStaging,
		ConcurrencyLevel: 4,
		Timeout:          config.Millis(time.Minute),
		RetryAttempts:    1,
		TestSuites: []config.TestSuiteConfig{
			{ID: "auth", Name: "Authentication", Enabled: true, Priority: 1,
				Parameters: map[string]interface{}{"tags": []interface{}{"critical"}}},
			{ID: "booking", Name: "Booking", Enabled: true, Priority: 2, Dependencies: []string{"auth"},
				Parameters: map[string]interface{}{"tags": []interface{}{"critical", "slow"}}},
			{ID: "payments", Name: "Payments", Enabled: true, Priority: 3, Dependencies: []string{"booking"}},
			{ID: "legacy", Name: "Legacy Flows", Enabled: false, Priority: 9},
		},
	}
}

func TestBuildPlanOrdersByDependency(t *testing.T) {
	cfg := planConfig()
	plan, err := BuildPlan(&cfg, Filter{})
	require.NoError(t, err)

	require.Len(t, plan.Suites, 3, "disabled suites are excluded")
	ids := []string{plan.Suites[0].ID, plan.Suites[1].ID, plan.Suites[2].ID}
	assert.Equal(t, []string{"auth", "booking", "payments"}, ids)
	assert.Equal(t, 4, plan.ConcurrencyLevel)
}

func TestBuildPlanSingleSuiteIncludesDependencies(t *testing.T) {
	cfg := planConfig()
	plan, err := BuildPlan(&cfg, Filter{Suite: "payments"})
	require.NoError(t, err)

	ids := make([]string, len(plan.Suites))
	for i, s := range plan.Suites {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"auth", "booking", "payments"}, ids)

	_, err = BuildPlan(&cfg, Filter{Suite: "legacy"})
	assert.Error(t, err, "disabled suites cannot be selected")
}

func TestBuildPlanTagFilters(t *testing.T) {
	cfg := planConfig()

	plan, err := BuildPlan(&cfg, Filter{Tags: []string{"critical"}})
	require.NoError(t, err)
	assert.Len(t, plan.Suites, 2)

	// Exclusion wins over inclusion.
	plan, err = BuildPlan(&cfg, Filter{Tags: []string{"critical"}, ExcludeTags: []string{"slow"}})
	require.NoError(t, err)
	require.Len(t, plan.Suites, 1)
	assert.Equal(t, "auth", plan.Suites[0].ID)

	// A tag match pulls in dependencies the tag filter would miss.
	plan, err = BuildPlan(&cfg, Filter{Tags: []string{"slow"}})
	require.NoError(t, err)
	require.Len(t, plan.Suites, 2)
	assert.Equal(t, "auth", plan.Suites[0].ID)
	assert.Equal(t, "booking", plan.Suites[1].ID)
}

func TestBuildPlanPatternFilterPullsDependencies(t *testing.T) {
	cfg := planConfig()
	plan, err := BuildPlan(&cfg, Filter{Pattern: regexp.MustCompile("^Payments$")})
	require.NoError(t, err)

	// The whole dependency chain comes along so the selection stays runnable.
	require.Len(t, plan.Suites, 3)
	ids := []string{plan.Suites[0].ID, plan.Suites[1].ID, plan.Suites[2].ID}
	assert.Equal(t, []string{"auth", "booking", "payments"}, ids)
}

func TestBuildPlanSuiteOverrides(t *testing.T) {
	cfg := planConfig()
	suiteTimeout := config.Millis(5 * time.Second)
	retries := 3
	cfg.TestSuites[0].Timeout = &suiteTimeout
	cfg.TestSuites[0].RetryAttempts = &retries

	plan, err := BuildPlan(&cfg, Filter{})
	require.NoError(t, err)

	assert.Equal(t, suiteTimeout, plan.Suites[0].Timeout)
	assert.Equal(t, 3, plan.Suites[0].RetryAttempts)
	assert.Equal(t, cfg.Timeout, plan.Suites[1].Timeout, "others keep configuration-wide values")
}

func TestLocalRunnerCountsResults(t *testing.T) {
	cfg := planConfig()
	plan, err := BuildPlan(&cfg, Filter{})
	require.NoError(t, err)

	runner := NewLocalRunner()
	result, err := runner.Execute(context.Background(), plan)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, result.Passed+result.Failures+result.Errors+result.Skipped, result.TotalTests)
	assert.Len(t, result.Suites, 3)
	assert.Positive(t, result.Passed)
}

func TestLocalRunnerDeterministicProbe(t *testing.T) {
	cfg := planConfig()
	plan, err := BuildPlan(&cfg, Filter{})
	require.NoError(t, err)

	runner := NewLocalRunner()
	first, err := runner.Execute(context.Background(), plan)
	require.NoError(t, err)
	second, err := runner.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, first.TotalTests, second.TotalTests)
	assert.Equal(t, first.Passed, second.Passed)
}

func TestLocalRunnerRespectsDependencyOrder(t *testing.T) {
	cfg := planConfig()
	plan, err := BuildPlan(&cfg, Filter{})
	require.NoError(t, err)

	var mu sync.Mutex
	var started []string
	runner := &LocalRunner{Probe: func(ctx context.Context, suite PlanSuite, _ []config.UserProfile) (report.SuiteResult, error) {
		mu.Lock()
		started = append(started, suite.ID)
		mu.Unlock()
		return report.SuiteResult{ID: suite.ID, Name: suite.Name, Passed: 1}, nil
	}}

	_, err = runner.Execute(context.Background(), plan)
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, id := range started {
		pos[id] = i
	}
	assert.Less(t, pos["auth"], pos["booking"])
	assert.Less(t, pos["booking"], pos["payments"])
}

func TestLocalRunnerBailSkipsRemaining(t *testing.T) {
	cfg := planConfig()
	plan, err := BuildPlan(&cfg, Filter{})
	require.NoError(t, err)
	plan.Bail = true

	runner := &LocalRunner{Probe: func(ctx context.Context, suite PlanSuite, _ []config.UserProfile) (report.SuiteResult, error) {
		if suite.ID == "auth" {
			return report.SuiteResult{ID: suite.ID, Name: suite.Name, Failures: 1}, nil
		}
		return report.SuiteResult{ID: suite.ID, Name: suite.Name, Passed: 1}, nil
	}}

	result, err := runner.Execute(context.Background(), plan)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Failures)
	assert.Equal(t, 2, result.Skipped, "downstream suites are skipped after bail")
}

func TestLocalRunnerRetries(t *testing.T) {
	cfg := planConfig()
	cfg.TestSuites = cfg.TestSuites[:1]
	retries := 2
	cfg.TestSuites[0].RetryAttempts = &retries

	plan, err := BuildPlan(&cfg, Filter{})
	require.NoError(t, err)

	attempts := 0
	runner := &LocalRunner{Probe: func(ctx context.Context, suite PlanSuite, _ []config.UserProfile) (report.SuiteResult, error) {
		attempts++
		if attempts < 3 {
			return report.SuiteResult{}, fmt.Errorf("transient failure")
		}
		return report.SuiteResult{ID: suite.ID, Name: suite.Name, Passed: 1}, nil
	}}

	result, err := runner.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, result.Success)
}

func TestLocalRunnerExhaustedRetriesBecomeError(t *testing.T) {
	cfg := planConfig()
	cfg.TestSuites = cfg.TestSuites[:1]

	plan, err := BuildPlan(&cfg, Filter{})
	require.NoError(t, err)

	runner := &LocalRunner{Probe: func(ctx context.Context, suite PlanSuite, _ []config.UserProfile) (report.SuiteResult, error) {
		return report.SuiteResult{}, fmt.Errorf("broken environment")
	}}

	result, err := runner.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, result.Suites[0].TestCases, 1)
	assert.Contains(t, result.Suites[0].TestCases[0].Message, "broken environment")
}

func TestLocalRunnerEmptyPlan(t *testing.T) {
	runner := NewLocalRunner()
	result, err := runner.Execute(context.Background(), &Plan{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, result.TotalTests)
}
