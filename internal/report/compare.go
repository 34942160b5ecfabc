package report

// Comparison holds the delta between a baseline run and a current run.
// Changes are computed as current minus baseline, so positive passed or
// successRate deltas mean improvement and positive failure deltas mean
// regression.
type Comparison struct {
	Baseline ComparisonSide   `json:"baseline"`
	Current  ComparisonSide   `json:"current"`
	Changes  ComparisonDeltas `json:"changes"`
}

// ComparisonSide summarizes one side of a comparison.
type ComparisonSide struct {
	TotalTests  int     `json:"totalTests"`
	Passed      int     `json:"passed"`
	Failures    int     `json:"failures"`
	Errors      int     `json:"errors"`
	Skipped     int     `json:"skipped"`
	SuccessRate float64 `json:"successRate"`
}

// ComparisonDeltas is the field-wise difference, current minus baseline.
type ComparisonDeltas struct {
	TotalTests  int     `json:"totalTests"`
	Passed      int     `json:"passed"`
	Failures    int     `json:"failures"`
	Errors      int     `json:"errors"`
	Skipped     int     `json:"skipped"`
	SuccessRate float64 `json:"successRate"`
}

// Compare computes the delta between two runs.
func Compare(baseline, current *TestRunResult) *Comparison {
	b := side(baseline)
	c := side(current)
	return &Comparison{
		Baseline: b,
		Current:  c,
		Changes: ComparisonDeltas{
			TotalTests:  c.TotalTests - b.TotalTests,
			Passed:      c.Passed - b.Passed,
			Failures:    c.Failures - b.Failures,
			Errors:      c.Errors - b.Errors,
			Skipped:     c.Skipped - b.Skipped,
			SuccessRate: c.SuccessRate - b.SuccessRate,
		},
	}
}

func side(r *TestRunResult) ComparisonSide {
	return ComparisonSide{
		TotalTests:  r.TotalTests,
		Passed:      r.Passed,
		Failures:    r.Failures,
		Errors:      r.Errors,
		Skipped:     r.Skipped,
		SuccessRate: r.SuccessRate(),
	}
}
