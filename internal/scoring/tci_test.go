package scoring

import (
	"math"
	"testing"

	"github.com/open-telco/telbench/internal/models"
)

func fourScores() map[models.Benchmark]float64 {
	return map[models.Benchmark]float64{
		models.BenchmarkTeleQnA:  83.6,
		models.BenchmarkTeleLogs: 75.0,
		models.BenchmarkTeleMath: 39.0,
		models.BenchmarkThreeGPP: 54.0,
	}
}

func TestCompute_KnownScores(t *testing.T) {
	cfg := DefaultTCIConfig()
	tci, ok := cfg.Compute(fourScores())
	if !ok {
		t.Fatal("four scores should produce a defined index")
	}
	if tci != 149.3 {
		t.Errorf("expected TCI 149.3 for the reference scores, got %v", tci)
	}
	if tci < 90 || tci > 150 {
		t.Errorf("TCI %v outside the typical envelope", tci)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	cfg := DefaultTCIConfig()
	first, ok1 := cfg.Compute(fourScores())
	second, ok2 := cfg.Compute(fourScores())
	if !ok1 || !ok2 {
		t.Fatal("expected defined indexes")
	}
	if first != second {
		t.Errorf("identical inputs must produce identical TCIs: %v vs %v", first, second)
	}
}

func TestCompute_BelowMinimumUndefined(t *testing.T) {
	cfg := DefaultTCIConfig()
	_, ok := cfg.Compute(map[models.Benchmark]float64{
		models.BenchmarkTeleQnA:  80,
		models.BenchmarkTeleLogs: 70,
	})
	if ok {
		t.Error("2 of 4 scores is below the minimum; index must be undefined")
	}
}

func TestCompute_ThreeScoresDefined(t *testing.T) {
	cfg := DefaultTCIConfig()
	_, ok := cfg.Compute(map[models.Benchmark]float64{
		models.BenchmarkTeleQnA:  80,
		models.BenchmarkTeleLogs: 70,
		models.BenchmarkTeleMath: 60,
	})
	if !ok {
		t.Error("3 scores meet the default minimum")
	}
}

func TestCompute_BoundaryScoresClamped(t *testing.T) {
	cfg := DefaultTCIConfig()
	tests := []struct {
		name   string
		scores map[models.Benchmark]float64
	}{
		{"all zero", map[models.Benchmark]float64{
			models.BenchmarkTeleQnA:  0,
			models.BenchmarkTeleLogs: 0,
			models.BenchmarkTeleMath: 0,
			models.BenchmarkThreeGPP: 0,
		}},
		{"all hundred", map[models.Benchmark]float64{
			models.BenchmarkTeleQnA:  100,
			models.BenchmarkTeleLogs: 100,
			models.BenchmarkTeleMath: 100,
			models.BenchmarkThreeGPP: 100,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tci, ok := cfg.Compute(tt.scores)
			if !ok {
				t.Fatal("expected a defined index")
			}
			if math.IsInf(tci, 0) || math.IsNaN(tci) {
				t.Errorf("boundary scores must clamp, not blow up: got %v", tci)
			}
		})
	}
}

func TestCompute_HundredBeatsZero(t *testing.T) {
	cfg := DefaultTCIConfig()
	all := func(v float64) map[models.Benchmark]float64 {
		m := map[models.Benchmark]float64{}
		for _, b := range models.AllBenchmarks() {
			m[b] = v
		}
		return m
	}
	hi, _ := cfg.Compute(all(100))
	lo, _ := cfg.Compute(all(0))
	if hi <= lo {
		t.Errorf("perfect scores must outrank zero scores: %v vs %v", hi, lo)
	}
}

func TestSyntheticError_KnownValues(t *testing.T) {
	cfg := DefaultTCIConfig()
	tests := []struct {
		benchmark models.Benchmark
		score     float64
		want      float64
	}{
		{models.BenchmarkTeleQnA, 83.6, 1.62},  // 1.5 * (1 + 16.4/200)
		{models.BenchmarkTeleLogs, 100, 3.6},   // perfect score keeps the base error
		{models.BenchmarkTeleMath, 0, 4.2},     // 2.8 * 1.5
		{models.BenchmarkThreeGPP, 54.0, 2.95}, // 2.4 * 1.23
	}
	for _, tt := range tests {
		got := cfg.SyntheticError(tt.benchmark, tt.score)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SyntheticError(%s, %v) = %v, want %v", tt.benchmark.Column(), tt.score, got, tt.want)
		}
	}
}

func TestSyntheticError_LowerScoresLargerError(t *testing.T) {
	cfg := DefaultTCIConfig()
	low := cfg.SyntheticError(models.BenchmarkTeleQnA, 20)
	high := cfg.SyntheticError(models.BenchmarkTeleQnA, 90)
	if low <= high {
		t.Errorf("error must grow as scores drop: low-score error %v, high-score error %v", low, high)
	}
}

func TestValidate_DefaultConfig(t *testing.T) {
	if err := DefaultTCIConfig().Validate(); err != nil {
		t.Errorf("shipped calibration must validate: %v", err)
	}
}

func TestValidate_BrokenTables(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TCIConfig)
	}{
		{"empty benchmarks", func(c *TCIConfig) { c.Benchmarks = nil }},
		{"difficulty at 1", func(c *TCIConfig) {
			c.Benchmarks[models.BenchmarkTeleQnA] = BenchmarkWeights{Difficulty: 1, Slope: 1.2, BaseError: 1}
		}},
		{"zero slope", func(c *TCIConfig) {
			c.Benchmarks[models.BenchmarkTeleQnA] = BenchmarkWeights{Difficulty: 0.5, Slope: 0, BaseError: 1}
		}},
		{"zero min scores", func(c *TCIConfig) { c.MinScoresRequired = 0 }},
		{"zero scale", func(c *TCIConfig) { c.ScaleFactor = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTCIConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func entryWithScores(model string, scores map[models.Benchmark]float64) models.LeaderboardEntry {
	e := models.LeaderboardEntry{Model: model, Date: "2026-01-15"}
	for b, v := range scores {
		e.SetScore(b, &models.BenchmarkScore{Value: v, SampleCount: 100})
	}
	return e
}

func TestRank_UndefinedSortsLast(t *testing.T) {
	cfg := DefaultTCIConfig()
	entries := []models.LeaderboardEntry{
		entryWithScores("partial (Openai)", map[models.Benchmark]float64{
			models.BenchmarkTeleQnA:  90,
			models.BenchmarkTeleLogs: 90,
		}),
		entryWithScores("strong (Anthropic)", fourScores()),
		entryWithScores("weak (Google)", map[models.Benchmark]float64{
			models.BenchmarkTeleQnA:  20,
			models.BenchmarkTeleLogs: 20,
			models.BenchmarkTeleMath: 20,
			models.BenchmarkThreeGPP: 20,
		}),
	}

	ranked := cfg.Rank(entries)
	if ranked[0].Model != "strong (Anthropic)" {
		t.Errorf("expected strong first, got %s", ranked[0].Model)
	}
	if ranked[1].Model != "weak (Google)" {
		t.Errorf("expected weak second, got %s", ranked[1].Model)
	}
	if ranked[2].Model != "partial (Openai)" {
		t.Errorf("undefined TCI must sort last, got %s", ranked[2].Model)
	}
	if ranked[2].TCI != nil {
		t.Error("partial entry should have no index")
	}
	if ranked[0].Rank != 1 || ranked[1].Rank != 2 || ranked[2].Rank != 0 {
		t.Errorf("unexpected ranks: %d, %d, %d", ranked[0].Rank, ranked[1].Rank, ranked[2].Rank)
	}
}

func TestRank_StableAmongUndefined(t *testing.T) {
	cfg := DefaultTCIConfig()
	entries := []models.LeaderboardEntry{
		entryWithScores("u1 (Meta)", nil),
		entryWithScores("u2 (Groq)", nil),
		entryWithScores("scored (Cohere)", fourScores()),
	}
	ranked := cfg.Rank(entries)
	if ranked[0].Model != "scored (Cohere)" {
		t.Fatalf("scored entry should lead, got %s", ranked[0].Model)
	}
	if ranked[1].Model != "u1 (Meta)" || ranked[2].Model != "u2 (Groq)" {
		t.Errorf("undefined entries should keep input order, got %s then %s", ranked[1].Model, ranked[2].Model)
	}
}

func TestTCIError(t *testing.T) {
	cfg := DefaultTCIConfig()
	got := cfg.TCIError(149.3)
	// 1.8 * (1 + (100-149.3)/200) = 1.8 * 0.7535
	if math.Abs(got-1.36) > 1e-9 {
		t.Errorf("TCIError(149.3) = %v, want 1.36", got)
	}
}
