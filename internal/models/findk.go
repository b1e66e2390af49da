package models

import (
	"github.com/open-telco/telbench/internal/statistics"
)

// FindKResult is the outcome of one Find-K preflight for one model. It is
// produced exactly once per invocation and never mutated. Err carries the
// failure description when the preflight run could not complete; the numeric
// fields then hold the conservative worst-case recommendation, so callers
// always get a usable K.
type FindKResult struct {
	Model                string                       `json:"model"`
	OptimalK             int                          `json:"optimal_k"`
	VarianceReductionPct float64                      `json:"variance_reduction_pct"`
	TaskConsistency      statistics.ConsistencyRecord `json:"task_consistency"`
	ObservedVariance     float64                      `json:"observed_variance"`
	Err                  string                       `json:"error,omitempty"`
}

// Failed reports whether the preflight fell back to the conservative result.
func (r FindKResult) Failed() bool {
	return r.Err != ""
}
