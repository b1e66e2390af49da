package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/submission"
	"github.com/open-telco/telbench/internal/trajectory"
	"github.com/spf13/cobra"
)

func newBundleCommand() *cobra.Command {
	var (
		modelName    string
		provider     string
		rawModel     string
		logDir       string
		outputPath   string
		allowPartial bool
	)

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Bundle trajectory logs into a leaderboard submission",
		Long: `Bundle trajectory logs into a leaderboard submission archive.

Scans the log directory for trajectory files belonging to the model, builds
the records row from their headline metrics (dated today), and packs the row
plus every matched trajectory into a .tar.gz ready to attach to a submission
PR. When one benchmark appears in several logs the later log wins, matching
how re-runs overwrite earlier results.

Bundling refuses rows with missing benchmark columns unless --partial is
given, since the leaderboard only ranks complete rows.

Example:
  telbench bundle --model gpt-4o --provider Openai --log-dir logs/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelName == "" || provider == "" {
				return errors.New("both --model and --provider are required")
			}
			if !models.IsRecognizedProvider(provider) {
				return fmt.Errorf("unrecognized provider %q (recognized: %s)",
					provider, strings.Join(models.RecognizedProviders, ", "))
			}
			id := models.ModelID{Name: modelName, Provider: provider}

			proj, err := config.Load(".")
			if err != nil {
				return err
			}
			if logDir == "" {
				logDir = proj.Paths.Logs
			}

			source := trajectory.ParallelDirSource{Dir: logDir, Workers: proj.Runner.Workers}
			bundler := submission.NewBundler(source)
			bundle, err := bundler.Build(cmd.Context(), id, submission.BuildOptions{
				RawModel:     rawModel,
				AllowPartial: allowPartial,
			})
			if err != nil {
				return fmt.Errorf("building submission: %w", err)
			}

			if outputPath == "" {
				outputPath = sanitizeModelName(id.Name) + "_submission.tar.gz"
			}
			if err := submission.WriteArchive(outputPath, bundle); err != nil {
				return err
			}

			displayBundle(cmd.OutOrStdout(), bundle, outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "", "Leaderboard model name, e.g. gpt-4o")
	cmd.Flags().StringVar(&provider, "provider", "", "Model provider, e.g. Openai")
	cmd.Flags().StringVar(&rawModel, "raw-model", "", "Harness-side model identifier for exact log matching, e.g. openai/gpt-4o")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "Directory scanned for trajectory logs (default: logs)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Archive path (default: <model>_submission.tar.gz)")
	cmd.Flags().BoolVar(&allowPartial, "partial", false, "Allow a row with missing benchmark columns")

	return cmd
}

//nolint:errcheck // fmt.Fprintf to stdout; write errors are not actionable
func displayBundle(w writer, bundle *submission.Bundle, outputPath string) {
	writeSection(w, "📦", "Submission bundle", bundle.Entry.Model)

	for _, b := range models.AllBenchmarks() {
		s := bundle.Entry.Score(b)
		if s == nil {
			writeStatus(w, statusIcon("warning"), fmt.Sprintf("%s: no result", padRight(b.Column(), 8)))
			continue
		}
		writeStatus(w, statusIcon("ok"), fmt.Sprintf("%s: %6.2f ±%.2f (n=%.0f)", padRight(b.Column(), 8), s.Value, s.Stderr, s.SampleCount))
	}

	writeStatus(w, statusIcon("ok"), fmt.Sprintf("%d trajectory file(s) included", len(bundle.Trajectories)))
	fmt.Fprintf(w, "\nBundle written to: %s\n", outputPath)
}
