package report

import "fmt"

// Merge combines multiple run results into one aggregate. Counters and
// durations are summed field-wise, suites are concatenated in input order,
// the aggregate succeeds only if every input did, and the timestamp is the
// latest of the inputs. Merging one input yields a copy of it unchanged.
func Merge(results []*TestRunResult) (*TestRunResult, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("nothing to merge: no results given")
	}

	merged := &TestRunResult{
		Success: true,
		Suites:  []SuiteResult{},
	}
	for _, r := range results {
		merged.TotalTests += r.TotalTests
		merged.Passed += r.Passed
		merged.Failures += r.Failures
		merged.Errors += r.Errors
		merged.Skipped += r.Skipped
		merged.Duration += r.Duration
		merged.Suites = append(merged.Suites, r.Suites...)
		merged.Success = merged.Success && r.Success
		if r.Timestamp.After(merged.Timestamp) {
			merged.Timestamp = r.Timestamp
		}
	}
	return merged, nil
}
