// Package preflight drives the Find-K check: run the evaluation harness
// with repeated epochs on a one-sample slice of every benchmark, observe
// how consistently the model answers, and recommend the number of epochs a
// full submission run needs.
package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/execution"
	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/statistics"
	"github.com/open-telco/telbench/internal/trajectory"
	"github.com/open-telco/telbench/internal/utils"
)

// genericFailure stands in when a failed run printed nothing usable.
const genericFailure = "Find-K evaluation failed"

// Runner executes one Find-K preflight for one model.
type Runner struct {
	cfg      *config.EvalConfig
	launcher execution.Launcher
	source   trajectory.Source
	logDir   string
	target   float64
	maxK     int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSource overrides where epoch records are read back from. The default
// reads the run's log directory.
func WithSource(src trajectory.Source) RunnerOption {
	return func(r *Runner) { r.source = src }
}

// WithTargetReduction overrides the variance reduction goal.
func WithTargetReduction(pct float64) RunnerOption {
	return func(r *Runner) { r.target = pct }
}

// WithMaxK caps the K search and the conservative fallback.
func WithMaxK(k int) RunnerOption {
	return func(r *Runner) { r.maxK = k }
}

// NewRunner creates a preflight runner for cfg using launcher to start the
// harness.
func NewRunner(cfg *config.EvalConfig, launcher execution.Launcher, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:      cfg,
		launcher: launcher,
		target:   statistics.DefaultTargetReduction,
		maxK:     statistics.DefaultMaxK,
	}
	for _, opt := range opts {
		opt(r)
	}

	// The harness logs relative to its working directory; read back from
	// the same place.
	r.logDir = cfg.TrajectoryDir()
	if base := cfg.WorkingDir(); base != "" {
		r.logDir = utils.ResolvePaths([]string{r.logDir}, base)[0]
	}
	if r.source == nil {
		r.source = trajectory.DirSource{Dir: r.logDir}
	}
	return r
}

// FindK runs the preflight and always returns a usable result. A run that
// could not complete degrades to the conservative worst case (maximum K,
// fully inconsistent) with Err describing the failure.
func (r *Runner) FindK(ctx context.Context) models.FindKResult {
	model := r.cfg.Model()

	if err := r.prepareLogDir(); err != nil {
		slog.Warn("preflight log dir not reset", "dir", r.logDir, "error", err)
	}

	res := r.launcher.Launch(ctx, execution.Request{
		Argv:    r.cfg.Argv(),
		Dir:     r.cfg.WorkingDir(),
		Env:     r.cfg.Env(),
		Timeout: r.cfg.Timeout(),
	})

	switch {
	case res.LaunchErr != nil:
		slog.Debug("preflight launch failed", "model", model, "error", res.LaunchErr)
		return r.fallback(model, "Failed to start find-k process")
	case res.TimedOut:
		return r.fallback(model, fmt.Sprintf("Find-K timed out after %d seconds", int(r.cfg.Timeout().Seconds())))
	case res.ExitCode != 0:
		return r.fallback(model, failureMessage(res))
	}

	rec := r.readConsistency(ctx, model)
	if len(rec) == 0 {
		// No structured logs parsed; scrape the runner's own output.
		rec = statistics.ConsistencyFromOutput(res.CombinedOutput())
	}

	k, reduction, inconsistency := statistics.FindOptimalK(rec, r.target, r.maxK)
	return models.FindKResult{
		Model:                model,
		OptimalK:             k,
		VarianceReductionPct: reduction,
		TaskConsistency:      rec,
		ObservedVariance:     inconsistency,
	}
}

// prepareLogDir creates the log directory and clears logs from previous
// preflights so stale epochs cannot leak into this run's consistency.
func (r *Runner) prepareLogDir() error {
	if err := utils.EnsureDir(r.logDir); err != nil {
		return err
	}
	stale, err := filepath.Glob(filepath.Join(r.logDir, "*.json"))
	if err != nil {
		return err
	}
	for _, f := range stale {
		if err := os.Remove(f); err != nil {
			slog.Debug("stale preflight log not removed", "file", f, "error", err)
		}
	}
	return nil
}

func (r *Runner) readConsistency(ctx context.Context, model string) statistics.ConsistencyRecord {
	records, err := r.source.Records(ctx)
	if err != nil {
		slog.Warn("reading preflight logs failed", "dir", r.logDir, "error", err)
		return statistics.ConsistencyRecord{}
	}

	tracker := statistics.NewTracker(model)
	for _, rec := range records {
		tracker.Observe(rec.Model, rec.Task, rec.Scores)
	}
	return tracker.Record()
}

func (r *Runner) fallback(model, errMsg string) models.FindKResult {
	return models.FindKResult{
		Model:                model,
		OptimalK:             r.maxK,
		VarianceReductionPct: statistics.ModelSpecificReduction(r.maxK, 1.0),
		TaskConsistency:      statistics.ConsistencyRecord{},
		ObservedVariance:     1.0,
		Err:                  errMsg,
	}
}

// failureMessage extracts the most useful line from a failed run: the last
// non-empty stderr line, stdout's when stderr carried nothing at all, or a
// generic message.
func failureMessage(res execution.Result) string {
	if line := res.LastStderrLine(); line != "" {
		return line
	}
	if res.Stderr == "" {
		if line := lastLine(res.Stdout); line != "" {
			return line
		}
	}
	return genericFailure
}

func lastLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
