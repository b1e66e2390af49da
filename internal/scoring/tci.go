// Package scoring computes the Telco Capability Index (TCI), the composite
// score ranking leaderboard entries. Four benchmarks with different scales
// and difficulties are made comparable through a logit transform, then
// combined as a difficulty-weighted average. The calibration constants are
// empirical; indexes land around 90–150 for typical score distributions but
// the formula does not clamp extremes.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/open-telco/telbench/internal/models"
)

// BenchmarkWeights is the fixed calibration for one benchmark. Difficulty
// is in (0, 1) with higher values marking nominally easier benchmarks, so
// the inverted difficulty weights harder benchmarks more. Slope scales a
// benchmark's discriminating power. BaseError seeds the synthetic
// uncertainty estimate.
type BenchmarkWeights struct {
	Difficulty float64
	Slope      float64
	BaseError  float64
}

// TCIConfig is the calibration table for the index. It ships as fixed
// constants; an invalid table is a deployment defect, checked once at
// startup via Validate.
type TCIConfig struct {
	Benchmarks map[models.Benchmark]BenchmarkWeights

	// TCIBaseError seeds the synthetic error reported for the index itself.
	TCIBaseError float64

	// MinScoresRequired is how many benchmark scores an entry needs before
	// the index is defined.
	MinScoresRequired int

	BaseScore   float64
	ScaleFactor float64
}

// DefaultTCIConfig returns the published calibration.
func DefaultTCIConfig() TCIConfig {
	return TCIConfig{
		Benchmarks: map[models.Benchmark]BenchmarkWeights{
			models.BenchmarkTeleQnA:  {Difficulty: 0.7, Slope: 1.2, BaseError: 1.5},
			models.BenchmarkTeleLogs: {Difficulty: 0.3, Slope: 1.5, BaseError: 3.6},
			models.BenchmarkTeleMath: {Difficulty: 0.4, Slope: 1.3, BaseError: 2.8},
			models.BenchmarkThreeGPP: {Difficulty: 0.4, Slope: 1.2, BaseError: 2.4},
		},
		TCIBaseError:      1.8,
		MinScoresRequired: 3,
		BaseScore:         115,
		ScaleFactor:       20,
	}
}

// Validate checks the calibration table. Failures indicate a broken build,
// not bad input, so callers abort on error.
func (c TCIConfig) Validate() error {
	if len(c.Benchmarks) == 0 {
		return fmt.Errorf("no benchmarks configured")
	}
	for b, w := range c.Benchmarks {
		if w.Difficulty <= 0 || w.Difficulty >= 1 {
			return fmt.Errorf("%s: difficulty %.2f outside (0, 1)", b.Column(), w.Difficulty)
		}
		if w.Slope <= 0 {
			return fmt.Errorf("%s: slope %.2f must be positive", b.Column(), w.Slope)
		}
		if w.BaseError < 0 {
			return fmt.Errorf("%s: base error %.2f is negative", b.Column(), w.BaseError)
		}
	}
	if c.MinScoresRequired < 1 {
		return fmt.Errorf("min scores required %d must be at least 1", c.MinScoresRequired)
	}
	if c.ScaleFactor == 0 {
		return fmt.Errorf("scale factor must be nonzero")
	}
	return nil
}

// Compute returns the composite index over the given benchmark percentage
// scores. ok is false when fewer than MinScoresRequired scores are present;
// that is an undefined index, not an error. Scores of exactly 0 or 100 are
// clamped into (0, 1) before the logit so the transform stays finite.
func (c TCIConfig) Compute(scores map[models.Benchmark]float64) (tci float64, ok bool) {
	present := 0
	weightedSum := 0.0
	totalWeight := 0.0

	// Fixed benchmark order keeps float accumulation deterministic.
	for _, b := range models.AllBenchmarks() {
		v, have := scores[b]
		if !have {
			continue
		}
		w, configured := c.Benchmarks[b]
		if !configured {
			continue
		}
		present++

		s := v / 100
		if s < 0.01 {
			s = 0.01
		}
		if s > 0.99 {
			s = 0.99
		}
		logit := math.Log(s / (1 - s))

		invDifficulty := 1 - w.Difficulty
		weight := invDifficulty * w.Slope
		weightedSum += weight * (logit + invDifficulty*2)
		totalWeight += weight
	}

	if present < c.MinScoresRequired {
		return 0, false
	}

	raw := weightedSum / totalWeight
	return round1(c.BaseScore + raw*c.ScaleFactor), true
}

// SyntheticError estimates a benchmark score's uncertainty: lower scores
// report proportionally larger error, independent of any measured stderr.
func (c TCIConfig) SyntheticError(b models.Benchmark, score float64) float64 {
	w, ok := c.Benchmarks[b]
	if !ok {
		return 0
	}
	return syntheticError(w.BaseError, score)
}

// TCIError is the synthetic uncertainty reported alongside the index.
func (c TCIConfig) TCIError(tci float64) float64 {
	return syntheticError(c.TCIBaseError, tci)
}

func syntheticError(baseError, score float64) float64 {
	return round2(baseError * (1 + (100-score)/200))
}

// RankedEntry pairs a leaderboard row with its computed index. TCI is nil
// when the entry has too few scores for a defined index.
type RankedEntry struct {
	models.LeaderboardEntry
	TCI      *float64 `json:"tci"`
	TCIError *float64 `json:"tci_error,omitempty"`

	// Rank is 1-based among entries with a defined index; 0 means unranked.
	Rank int `json:"rank,omitempty"`
}

// Rank computes the index for every entry and sorts by descending TCI.
// Entries with an undefined index sort last, keeping their relative input
// order.
func (c TCIConfig) Rank(entries []models.LeaderboardEntry) []RankedEntry {
	ranked := make([]RankedEntry, 0, len(entries))
	for _, e := range entries {
		re := RankedEntry{LeaderboardEntry: e}
		if tci, ok := c.Compute(e.ScoreValues()); ok {
			v := tci
			re.TCI = &v
			errEst := c.TCIError(tci)
			re.TCIError = &errEst
		}
		ranked = append(ranked, re)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].TCI, ranked[j].TCI
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})

	rank := 0
	for i := range ranked {
		if ranked[i].TCI != nil {
			rank++
			ranked[i].Rank = rank
		}
	}
	return ranked
}

// round1 and round2 match the runner's reporting: round half to even.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
