package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/dataset"
	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/scoring"
	"github.com/spf13/cobra"
)

// scoreFlagNames maps the ad-hoc score flags to their benchmarks.
var scoreFlagNames = map[string]models.Benchmark{
	"teleqna":  models.BenchmarkTeleQnA,
	"telelogs": models.BenchmarkTeleLogs,
	"telemath": models.BenchmarkTeleMath,
	"3gpp":     models.BenchmarkThreeGPP,
}

func newScoreCommand() *cobra.Command {
	var (
		recordsPath string
		jsonOutput  bool
		flagScores  = map[string]*float64{}
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the Telco Capability Index (TCI)",
		Long: `Compute the Telco Capability Index, the composite score ranking the
leaderboard.

Two modes:

  Ad-hoc:   pass benchmark percentages directly, e.g.
              telbench score --teleqna 74.2 --telelogs 48.0 --telemath 52.5
            At least 3 of the 4 benchmarks are needed for a defined index.

  Records:  rank every entry of a records file, e.g.
              telbench score --records records.json

The index combines benchmark scores through a logit transform weighted by
benchmark difficulty. Entries with fewer than 3 scores have an undefined
index and rank last.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tci := scoring.DefaultTCIConfig()
			if err := tci.Validate(); err != nil {
				return fmt.Errorf("TCI calibration table: %w", err)
			}

			scores := map[models.Benchmark]float64{}
			for name, b := range scoreFlagNames {
				if cmd.Flags().Changed(name) {
					scores[b] = *flagScores[name]
				}
			}

			w := cmd.OutOrStdout()
			if len(scores) > 0 {
				if cmd.Flags().Changed("records") {
					return errors.New("--records cannot be combined with ad-hoc benchmark scores")
				}
				return scoreAdHoc(w, tci, scores, jsonOutput)
			}

			if recordsPath == "" {
				proj, err := config.Load(".")
				if err != nil {
					return err
				}
				recordsPath = proj.Paths.Records
			}
			entries, err := dataset.LoadRecords(recordsPath)
			if err != nil {
				return err
			}
			ranked := tci.Rank(entries)
			if jsonOutput {
				return writeJSONOutput(w, ranked)
			}
			displayLeaderboard(w, ranked)
			return nil
		},
	}

	cmd.Flags().StringVar(&recordsPath, "records", "", "Records file to rank (default: records.json)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	for name, b := range scoreFlagNames {
		flagScores[name] = cmd.Flags().Float64(name, 0, fmt.Sprintf("%s score in percent", b.Column()))
	}

	return cmd
}

// scoreAdHoc computes the index for directly supplied benchmark scores. An
// undefined index (too few scores) is an answer, not an error.
func scoreAdHoc(w writer, tci scoring.TCIConfig, scores map[models.Benchmark]float64, jsonOutput bool) error {
	value, ok := tci.Compute(scores)
	if !ok {
		if jsonOutput {
			return writeJSONOutput(w, map[string]any{"tci": nil})
		}
		fmt.Fprintf(w, "TCI undefined: needs at least %d of 4 benchmark scores, got %d\n", //nolint:errcheck
			tci.MinScoresRequired, len(scores))
		return nil
	}

	if jsonOutput {
		out := map[string]any{
			"tci":       value,
			"tci_error": tci.TCIError(value),
		}
		for b, v := range scores {
			out[b.Column()] = map[string]float64{
				"score":  v,
				"stderr": tci.SyntheticError(b, v),
			}
		}
		return writeJSONOutput(w, out)
	}

	writeSection(w, "📊", "Telco Capability Index", fmt.Sprintf("%.1f ±%.2f", value, tci.TCIError(value)))
	for _, b := range models.AllBenchmarks() {
		v, present := scores[b]
		if !present {
			writeStatus(w, statusIcon(""), fmt.Sprintf("%s: not provided", padRight(b.Column(), 8)))
			continue
		}
		writeStatus(w, statusIcon("ok"), fmt.Sprintf("%s: %6.2f ±%.2f", padRight(b.Column(), 8), v, tci.SyntheticError(b, v)))
	}
	fmt.Fprintf(w, "\n") //nolint:errcheck
	return nil
}

func writeJSONOutput(w writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
