package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/execution"
	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/preflight"
	"github.com/open-telco/telbench/internal/spinner"
	"github.com/open-telco/telbench/internal/statistics"
)

// startSpinner is a test hook for replacing the spinner in tests.
var startSpinner = spinner.Start

func newFindKCommand() *cobra.Command {
	var (
		epochs     int
		timeoutSec int
		target     float64
		maxK       int
		logDir     string
		outputPath string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "findk <model>...",
		Short: "Recommend the number of evaluation epochs (K) per model",
		Long: `Recommend the number of evaluation epochs (K) a full benchmark run needs.

For each model the preflight runs the evaluation harness with repeated
epochs on a one-sample slice of every benchmark, observes how consistently
the model answers, and searches for the smallest K whose expected variance
reduction meets the target. A preflight that cannot complete degrades to the
conservative worst case (maximum K) instead of failing, so this command
always produces a usable recommendation per model.

Models are the harness-side identifiers, e.g. "openai/gpt-4o". Multiple
models run concurrently, bounded by --workers.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := config.Load(".")
			if err != nil {
				return err
			}
			if epochs == 0 {
				epochs = proj.Runner.Epochs
			}
			if timeoutSec == 0 {
				timeoutSec = proj.Runner.Timeout
			}
			if workers == 0 {
				workers = proj.Runner.Workers
			}
			if workers < 1 {
				workers = 1
			}
			if logDir == "" {
				logDir = proj.Paths.FindK
			}

			settings := loadUserSettings()
			launcher := execution.NewExecLauncher()

			results := make([]models.FindKResult, len(args))
			g, gctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(workers)
			for i, model := range args {
				// Each model logs to its own directory so concurrent
				// preflights cannot clear each other's epochs.
				evalCfg := config.NewEvalConfig(model,
					config.WithCommand(proj.Runner.Command),
					config.WithTasks(proj.Runner.Tasks),
					config.WithWorkingDir(proj.Runner.Dir),
					config.WithEpochs(epochs),
					config.WithTimeout(time.Duration(timeoutSec)*time.Second),
					config.WithLogDir(filepath.Join(logDir, sanitizeModelName(model))),
					config.WithEnv(settings.Env()),
				)
				runner := preflight.NewRunner(evalCfg, launcher,
					preflight.WithTargetReduction(target),
					preflight.WithMaxK(maxK),
				)
				g.Go(func() error {
					results[i] = runner.FindK(gctx)
					return nil
				})
			}

			stopSpinner := startSpinner(cmd.ErrOrStderr(),
				fmt.Sprintf("🔍 Running preflight for %d model(s)...", len(args)))
			err = g.Wait()
			stopSpinner()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, res := range results {
				displayFindKResult(w, res, target)
			}

			if outputPath != "" {
				if err := saveFindKResults(results, outputPath); err != nil {
					return fmt.Errorf("writing results: %w", err)
				}
				fmt.Fprintf(w, "Results saved to: %s\n", outputPath) //nolint:errcheck
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&epochs, "epochs", 0, "Repeat count per task (default: 5, or runner.epochs from telbench.yaml)")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "Hard wall clock per model in seconds (default: 600)")
	cmd.Flags().Float64Var(&target, "target", statistics.DefaultTargetReduction, "Variance reduction goal in percent")
	cmd.Flags().IntVar(&maxK, "max-k", statistics.DefaultMaxK, "Ceiling for the K search and the conservative fallback")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "Directory for preflight trajectory logs (default: logs/find_k)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output JSON file for all results")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of models evaluated concurrently (default: 2)")

	return cmd
}

//nolint:errcheck // fmt.Fprintf to stdout; write errors are not actionable
func displayFindKResult(w writer, res models.FindKResult, target float64) {
	writeSection(w, "🔍", "Find-K", res.Model)

	if res.Failed() {
		writeStatus(w, statusIcon("warning"), fmt.Sprintf("Preflight failed: %s", res.Err))
		writeStatus(w, statusIcon("warning"), fmt.Sprintf("Conservative recommendation: K=%d (assumes fully inconsistent answers)", res.OptimalK))
		fmt.Fprintf(w, "\n")
		return
	}

	writeStatus(w, statusIcon("ok"), fmt.Sprintf("Recommended epochs: K=%d", res.OptimalK))
	writeStatus(w, statusIcon("ok"), fmt.Sprintf("Expected variance reduction: %.1f%% (target %.1f%%)", res.VarianceReductionPct, target))

	total, mixed := consistencyCounts(res.TaskConsistency)
	if total > 0 {
		state := "ok"
		if mixed > 0 {
			state = "warning"
		}
		writeStatus(w, statusIcon(state), fmt.Sprintf("Task consistency: %d/%d tasks stable (inconsistency %.2f)", total-mixed, total, res.ObservedVariance))

		ci := statistics.AccuracyCI(res.TaskConsistency, 0.95, -1)
		writeStatus(w, statusIcon("ok"), fmt.Sprintf("Accuracy 95%% CI: [%.2f, %.2f] (mean %.2f over %d tasks)", ci.Lower, ci.Upper, ci.Mean, total))
	} else {
		writeStatus(w, statusIcon("warning"), "No per-task observations recovered from the run")
	}
	fmt.Fprintf(w, "\n")
}

// consistencyCounts summarizes a consistency record: tasks with at least one
// observation, and how many of those produced mixed outcomes across epochs.
func consistencyCounts(rec statistics.ConsistencyRecord) (total, mixed int) {
	for _, outcomes := range rec {
		if len(outcomes) == 0 {
			continue
		}
		total++
		first := outcomes[0]
		for _, o := range outcomes[1:] {
			if o != first {
				mixed++
				break
			}
		}
	}
	return total, mixed
}

func saveFindKResults(results []models.FindKResult, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
