// Package submission assembles leaderboard submissions: it matches
// trajectory logs to a model, condenses them into a records row, and
// packs both into an uploadable archive.
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/trajectory"
)

// ErrNoTrajectories means no log in the source belonged to the model.
var ErrNoTrajectories = errors.New("model not found in logs")

// Bundle is everything a submission carries: the leaderboard row and the
// trajectory records substantiating it.
type Bundle struct {
	Entry        models.LeaderboardEntry
	Trajectories []trajectory.Record
}

// BuildOptions tune how a bundle is assembled.
type BuildOptions struct {
	// RawModel is the harness-side identifier (e.g. "openai/gpt-4o") for
	// exact trajectory matching. Empty falls back to loose matching on
	// the leaderboard name and provider.
	RawModel string

	// AllowPartial permits rows missing benchmark columns. The default
	// refuses them, since the leaderboard only ranks complete rows.
	AllowPartial bool
}

// Bundler builds submission bundles from a trajectory source.
type Bundler struct {
	source trajectory.Source
}

// NewBundler creates a bundler reading trajectories from source.
func NewBundler(source trajectory.Source) *Bundler {
	return &Bundler{source: source}
}

// Build assembles the submission for id: every matching trajectory plus a
// records row dated today. When one benchmark appears in several logs the
// later log wins, matching how re-runs overwrite earlier results.
func (b *Bundler) Build(ctx context.Context, id models.ModelID, opts BuildOptions) (*Bundle, error) {
	records, err := b.source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading logs: %w", err)
	}

	var matched []trajectory.Record
	for _, rec := range records {
		if MatchesSubmission(rec.Model, id, opts.RawModel) {
			matched = append(matched, rec)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoTrajectories, id.Name)
	}

	entry := models.NewLeaderboardEntry(id)
	for _, rec := range matched {
		if rec.Benchmark == "" {
			continue
		}
		score, ok := rec.BenchmarkScore()
		if !ok {
			continue
		}
		entry.SetScore(rec.Benchmark, &score)
	}

	if !opts.AllowPartial {
		if missing := missingColumns(entry); len(missing) > 0 {
			return nil, fmt.Errorf("no results for %s; run the full suite or allow a partial bundle", strings.Join(missing, ", "))
		}
	}

	return &Bundle{Entry: entry, Trajectories: matched}, nil
}

func missingColumns(entry models.LeaderboardEntry) []string {
	var missing []string
	for _, b := range models.AllBenchmarks() {
		if entry.Score(b) == nil {
			missing = append(missing, b.Column())
		}
	}
	return missing
}

// MatchesSubmission reports whether a trajectory's model identifier refers
// to the submitted model. Harness logs name models in provider/model form
// ("openai/gpt-4o", sometimes "openrouter/openai/gpt-4o"), so after an
// exact raw-identifier check the match is deliberately loose: a
// case-insensitive name substring, or provider and name recognized in the
// identifier's slash-separated parts.
func MatchesSubmission(trajModel string, id models.ModelID, rawModel string) bool {
	if trajModel == "" {
		return false
	}
	if rawModel != "" && trajModel == rawModel {
		return true
	}

	tm := strings.ToLower(trajModel)
	name := strings.ToLower(id.Name)
	provider := strings.ToLower(id.Provider)

	if strings.Contains(tm, name) {
		return true
	}
	if strings.Contains(tm, provider+"/"+name) {
		return true
	}

	parts := strings.Split(tm, "/")
	if len(parts) >= 2 {
		// provider/model, or router/provider/model.
		trajProvider := parts[0]
		if len(parts) > 2 {
			trajProvider = parts[1]
		}
		trajName := parts[len(parts)-1]
		if strings.Contains(trajProvider, provider) && strings.Contains(trajName, name) {
			return true
		}
	}
	return false
}
