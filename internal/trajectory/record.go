// Package trajectory parses recorded evaluation run logs. Two shapes exist
// in the wild: the structured runner format (top-level "eval" object) and a
// legacy flat format. Both normalize to [Record] before any scoring or
// validation logic sees them; anything else is skipped as malformed.
package trajectory

import (
	"math"

	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/statistics"
)

// Record is the canonical view of one trajectory file.
type Record struct {
	// Model is the exact model identifier the run evaluated.
	Model string

	// Task is the runner's task name (e.g. "otb_teleqna").
	Task string

	// Benchmark is the leaderboard benchmark the task maps to; empty when
	// the task name matches no benchmark.
	Benchmark models.Benchmark

	// Scores lists the run's headline metrics in a deterministic order:
	// accuracy first, stderr second, remaining metrics sorted by name.
	Scores []statistics.ScoreEntry

	// SampleIDs are the dataset sample identifiers the run evaluated, nil
	// when the log does not list them.
	SampleIDs []string

	// SampleCount is the dataset's declared sample total, falling back to
	// len(SampleIDs) when the log does not declare one.
	SampleCount int

	// Accuracy and Stderr are the first scorer's headline metrics, nil
	// when absent. Accuracy is on the [0, 1] scale.
	Accuracy *float64
	Stderr   *float64

	// Status is the run's own completion status ("success", "error", ...).
	Status string

	// ErrMsg is the run's recorded failure, empty for clean runs.
	ErrMsg string

	// File is the path the record was parsed from, when known.
	File string
}

// MatchesModel reports whether the record belongs to model (exact match).
func (r Record) MatchesModel(model string) bool {
	return r.Model == model
}

// HasError reports whether the run itself finished in error, regardless of
// whether it produced scores.
func (r Record) HasError() bool {
	return r.Status == "error" || r.ErrMsg != ""
}

// BenchmarkScore converts the record's headline metrics to a leaderboard
// score triple (percentage scale). ok is false when accuracy is absent.
// Values at or below 1.0 are treated as fractions and scaled; anything
// larger is assumed to be a percentage already. A stderr above 1.0 is not
// trusted and reports as 0. The sample count prefers the evaluated ID list
// over the dataset's declared total.
func (r Record) BenchmarkScore() (models.BenchmarkScore, bool) {
	if r.Accuracy == nil {
		return models.BenchmarkScore{}, false
	}
	value := *r.Accuracy
	if value <= 1.0 {
		value *= 100
	}
	n := len(r.SampleIDs)
	if n == 0 {
		n = r.SampleCount
	}
	s := models.BenchmarkScore{
		Value:       round2(value),
		SampleCount: float64(n),
	}
	if r.Stderr != nil && *r.Stderr <= 1.0 {
		s.Stderr = round2(*r.Stderr * 100)
	}
	return s, true
}

// round2 rounds to two decimals, half to even, matching how the runner
// itself reports percentages.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
