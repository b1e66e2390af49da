package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Benchmark identifies one of the telecom evaluation suites.
type Benchmark string

const (
	BenchmarkTeleQnA  Benchmark = "teleqna"
	BenchmarkTeleLogs Benchmark = "telelogs"
	BenchmarkTeleMath Benchmark = "telemath"
	// BenchmarkThreeGPP is stored under the "3gpp_tsg" column in leaderboard
	// records and dataset configs; the internal key keeps the task-style name.
	BenchmarkThreeGPP Benchmark = "three_gpp"
)

// AllBenchmarks returns the benchmarks in leaderboard column order.
func AllBenchmarks() []Benchmark {
	return []Benchmark{BenchmarkTeleQnA, BenchmarkTeleLogs, BenchmarkTeleMath, BenchmarkThreeGPP}
}

// Column returns the leaderboard record column name for the benchmark.
func (b Benchmark) Column() string {
	if b == BenchmarkThreeGPP {
		return "3gpp_tsg"
	}
	return string(b)
}

// HubConfig returns the dataset-hub config name holding the benchmark's
// published sample set.
func (b Benchmark) HubConfig() string {
	return b.Column()
}

// TaskBenchmark maps an evaluation task name (e.g. "otb_teleqna",
// "3gpp_tsg_eval") to its benchmark. Matching is by keyword because task
// names carry runner-specific prefixes.
func TaskBenchmark(task string) (Benchmark, bool) {
	t := strings.ToLower(task)
	switch {
	case strings.Contains(t, "teleqna"):
		return BenchmarkTeleQnA, true
	case strings.Contains(t, "telelogs"):
		return BenchmarkTeleLogs, true
	case strings.Contains(t, "telemath"):
		return BenchmarkTeleMath, true
	case strings.Contains(t, "3gpp"), strings.Contains(t, "tsg"):
		return BenchmarkThreeGPP, true
	}
	return "", false
}

// RecognizedProviders is the fixed set of providers a submission may name.
// The leaderboard groups and badges rows by this value, so free-form
// provider strings are rejected at validation time.
var RecognizedProviders = []string{
	"Openai",
	"Anthropic",
	"Google",
	"Mistral",
	"Deepseek",
	"Meta",
	"Cohere",
	"Together",
	"Openrouter",
	"Groq",
	"Fireworks",
}

// IsRecognizedProvider reports whether provider is in [RecognizedProviders].
// Matching is exact, including capitalization.
func IsRecognizedProvider(provider string) bool {
	for _, p := range RecognizedProviders {
		if p == provider {
			return true
		}
	}
	return false
}

// Model string parse failures, distinguishable with errors.Is so callers
// can report format and provider problems as separate checks.
var (
	ErrModelFormat     = errors.New("invalid model format")
	ErrUnknownProvider = errors.New("unrecognized provider")
)

// ModelID is the parsed form of a leaderboard model string
// "<name> (<Provider>)".
type ModelID struct {
	Name     string
	Provider string
}

// String reassembles the canonical leaderboard model string.
func (m ModelID) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.Provider)
}

// ParseModelString splits a leaderboard model string into name and provider.
// The string must contain " (" and end with ")"; the provider must be
// recognized. Both failures are reported as errors, not panics, because the
// string originates from submitted data.
func ParseModelString(s string) (ModelID, error) {
	idx := strings.LastIndex(s, " (")
	if idx < 0 || !strings.HasSuffix(s, ")") {
		return ModelID{}, fmt.Errorf("%w: %q, expected \"model-name (Provider)\"", ErrModelFormat, s)
	}
	id := ModelID{
		Name:     s[:idx],
		Provider: strings.TrimSuffix(s[idx+2:], ")"),
	}
	if id.Name == "" {
		return ModelID{}, fmt.Errorf("%w: %q, empty model name", ErrModelFormat, s)
	}
	if !IsRecognizedProvider(id.Provider) {
		return ModelID{}, fmt.Errorf("%w: %q (recognized: %s)", ErrUnknownProvider, id.Provider, strings.Join(RecognizedProviders, ", "))
	}
	return id, nil
}

// BenchmarkScore is one benchmark result for one model. It is persisted as
// the 3-element array [score, stderr, sampleCount] and is immutable once a
// run produces it.
type BenchmarkScore struct {
	Value       float64
	Stderr      float64
	SampleCount float64
}

// MarshalJSON encodes the score as the [value, stderr, sampleCount] triple
// used by leaderboard records.
func (s BenchmarkScore) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{s.Value, s.Stderr, s.SampleCount})
}

// UnmarshalJSON decodes the 3-element array form.
func (s *BenchmarkScore) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("benchmark score must be a numeric array: %w", err)
	}
	if len(arr) != 3 {
		return fmt.Errorf("benchmark score must have exactly 3 elements [score, stderr, sampleCount], got %d", len(arr))
	}
	s.Value, s.Stderr, s.SampleCount = arr[0], arr[1], arr[2]
	return nil
}

// Validate checks the score invariants.
func (s BenchmarkScore) Validate() error {
	if s.Value < 0 || s.Value > 100 {
		return fmt.Errorf("score %.2f outside [0, 100]", s.Value)
	}
	if s.SampleCount < 0 {
		return fmt.Errorf("sample count %.0f is negative", s.SampleCount)
	}
	return nil
}

// DateLayout is the ISO date format used by leaderboard records.
const DateLayout = "2006-01-02"

// LeaderboardEntry is one leaderboard row. Benchmark columns are nil when
// the model has not been evaluated on that benchmark; records keep the
// column present as JSON null so every row has the same shape.
type LeaderboardEntry struct {
	Model    string          `json:"model"`
	TeleQnA  *BenchmarkScore `json:"teleqna"`
	TeleLogs *BenchmarkScore `json:"telelogs"`
	TeleMath *BenchmarkScore `json:"telemath"`
	ThreeGPP *BenchmarkScore `json:"3gpp_tsg"`
	Date     string          `json:"date"`
}

// NewLeaderboardEntry returns an entry for model dated today (UTC).
func NewLeaderboardEntry(model ModelID) LeaderboardEntry {
	return LeaderboardEntry{
		Model: model.String(),
		Date:  time.Now().UTC().Format(DateLayout),
	}
}

// Score returns the entry's score for b, or nil when absent.
func (e *LeaderboardEntry) Score(b Benchmark) *BenchmarkScore {
	switch b {
	case BenchmarkTeleQnA:
		return e.TeleQnA
	case BenchmarkTeleLogs:
		return e.TeleLogs
	case BenchmarkTeleMath:
		return e.TeleMath
	case BenchmarkThreeGPP:
		return e.ThreeGPP
	}
	return nil
}

// SetScore stores s under benchmark b.
func (e *LeaderboardEntry) SetScore(b Benchmark, s *BenchmarkScore) {
	switch b {
	case BenchmarkTeleQnA:
		e.TeleQnA = s
	case BenchmarkTeleLogs:
		e.TeleLogs = s
	case BenchmarkTeleMath:
		e.TeleMath = s
	case BenchmarkThreeGPP:
		e.ThreeGPP = s
	}
}

// ScoreValues returns the present benchmark percentage values keyed by
// benchmark. Absent columns are omitted.
func (e *LeaderboardEntry) ScoreValues() map[Benchmark]float64 {
	out := make(map[Benchmark]float64, 4)
	for _, b := range AllBenchmarks() {
		if s := e.Score(b); s != nil {
			out[b] = s.Value
		}
	}
	return out
}

// ScoreCount returns how many benchmark columns are present.
func (e *LeaderboardEntry) ScoreCount() int {
	n := 0
	for _, b := range AllBenchmarks() {
		if e.Score(b) != nil {
			n++
		}
	}
	return n
}

// Validate checks the row: model string shape, provider, date format, and
// per-score invariants.
func (e *LeaderboardEntry) Validate() error {
	if _, err := ParseModelString(e.Model); err != nil {
		return err
	}
	if e.Date != "" {
		if _, err := time.Parse(DateLayout, e.Date); err != nil {
			return fmt.Errorf("invalid date %q: %w", e.Date, err)
		}
	}
	for _, b := range AllBenchmarks() {
		if s := e.Score(b); s != nil {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("%s: %w", b.Column(), err)
			}
		}
	}
	return nil
}
