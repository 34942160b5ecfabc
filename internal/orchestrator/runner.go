package orchestrator

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"testdeck/internal/config"
	"testdeck/internal/report"
	"testdeck/pkg/logging"
)

// Orchestrator executes a plan and produces an aggregated run result.
type Orchestrator interface {
	Execute(ctx context.Context, plan *Plan) (*report.TestRunResult, error)
}

// ProbeFunc executes one suite of a plan and reports its outcome. The context
// carries the per-suite timeout. Implementations must honor retries
// themselves only if they want non-default retry semantics; the runner
// re-invokes the probe on error up to the suite's retry budget.
type ProbeFunc func(ctx context.Context, suite PlanSuite, profiles []config.UserProfile) (report.SuiteResult, error)

// LocalRunner runs plan suites in-process with bounded concurrency. Suites
// wait for their dependencies to finish before starting; independent suites
// run in parallel up to the plan's concurrency level.
type LocalRunner struct {
	Probe ProbeFunc
}

// NewLocalRunner creates a runner with the default simulated probe.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{Probe: simulatedProbe}
}

// Execute runs every suite of the plan and aggregates the results. With Bail
// set, no new suites are started after the first failure; suites already
// running are allowed to finish.
func (r *LocalRunner) Execute(ctx context.Context, plan *Plan) (*report.TestRunResult, error) {
	if len(plan.Suites) == 0 {
		return &report.TestRunResult{Success: true, Suites: []report.SuiteResult{}, Timestamp: time.Now().UTC()}, nil
	}

	concurrency := int64(plan.ConcurrencyLevel)
	if concurrency < 1 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(concurrency)

	done := make(map[string]chan struct{}, len(plan.Suites))
	for _, suite := range plan.Suites {
		done[suite.ID] = make(chan struct{})
	}

	var mu sync.Mutex
	results := make(map[string]report.SuiteResult, len(plan.Suites))
	bailed := false

	start := time.Now()
	group, groupCtx := errgroup.WithContext(ctx)
	for _, suite := range plan.Suites {
		suite := suite
		group.Go(func() error {
			defer close(done[suite.ID])

			for _, dep := range suite.Dependencies {
				ch, ok := done[dep]
				if !ok {
					continue
				}
				select {
				case <-ch:
				case <-groupCtx.Done():
					return groupCtx.Err()
				}
			}

			mu.Lock()
			skip := bailed
			mu.Unlock()
			if skip {
				mu.Lock()
				results[suite.ID] = report.SuiteResult{
					ID: suite.ID, Name: suite.Name, Skipped: 1,
					TestCases: []report.TestCaseResult{{Name: suite.Name, Status: report.StatusSkipped, Message: "skipped after earlier failure"}},
				}
				mu.Unlock()
				return nil
			}

			if err := sem.Acquire(groupCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			result := r.runSuite(groupCtx, suite, plan.Profiles)
			mu.Lock()
			results[suite.ID] = result
			if plan.Bail && (result.Failures > 0 || result.Errors > 0) {
				bailed = true
			}
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("test run aborted: %w", err)
	}

	run := &report.TestRunResult{
		Suites:    make([]report.SuiteResult, 0, len(plan.Suites)),
		Duration:  config.FromDuration(time.Since(start)),
		Timestamp: time.Now().UTC(),
	}
	for _, suite := range plan.Suites {
		sr := results[suite.ID]
		run.Suites = append(run.Suites, sr)
		run.Passed += sr.Passed
		run.Failures += sr.Failures
		run.Errors += sr.Errors
		run.Skipped += sr.Skipped
	}
	run.TotalTests = run.Passed + run.Failures + run.Errors + run.Skipped
	run.Success = run.Failures == 0 && run.Errors == 0
	return run, nil
}

// runSuite invokes the probe with the suite timeout, retrying on error up to
// the suite's retry budget.
func (r *LocalRunner) runSuite(ctx context.Context, suite PlanSuite, profiles []config.UserProfile) report.SuiteResult {
	attempts := suite.RetryAttempts + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		suiteCtx := ctx
		if suite.Timeout > 0 {
			var cancel context.CancelFunc
			suiteCtx, cancel = context.WithTimeout(ctx, suite.Timeout.Duration())
			defer cancel()
		}

		result, err := r.Probe(suiteCtx, suite, profiles)
		if err == nil {
			if attempt > 1 {
				logging.Info("Runner", "Suite %s succeeded on attempt %d", suite.ID, attempt)
			}
			return result
		}
		lastErr = err
		logging.Warn("Runner", "Suite %s attempt %d/%d failed: %v", suite.ID, attempt, attempts, err)
	}

	return report.SuiteResult{
		ID:     suite.ID,
		Name:   suite.Name,
		Errors: 1,
		TestCases: []report.TestCaseResult{{
			Name:    suite.Name,
			Status:  report.StatusError,
			Message: lastErr.Error(),
		}},
	}
}

// simulatedProbe is the default probe: it produces a deterministic synthetic
// result derived from the suite ID, so repeated runs of the same plan yield
// identical reports. Real execution backends replace this via the Probe field.
func simulatedProbe(ctx context.Context, suite PlanSuite, profiles []config.UserProfile) (report.SuiteResult, error) {
	select {
	case <-ctx.Done():
		return report.SuiteResult{}, ctx.Err()
	default:
	}

	h := fnv.New32a()
	h.Write([]byte(suite.ID))
	seed := h.Sum32()

	cases := int(seed%5) + 3
	result := report.SuiteResult{
		ID:       suite.ID,
		Name:     suite.Name,
		Duration: config.Millis(time.Duration(cases) * 50 * time.Millisecond),
	}
	for i := 0; i < cases; i++ {
		result.TestCases = append(result.TestCases, report.TestCaseResult{
			Name:     fmt.Sprintf("%s/case-%d", suite.ID, i+1),
			Status:   report.StatusPassed,
			Duration: config.Millis(50 * time.Millisecond),
		})
		result.Passed++
	}
	return result, nil
}
