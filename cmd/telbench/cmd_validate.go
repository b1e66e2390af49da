package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/dataset"
	"github.com/open-telco/telbench/internal/hub"
	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/reporting"
	"github.com/open-telco/telbench/internal/validation"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var (
		reportPath string
		junitPath  string
		countsFile string
		hubURL     string
		hubToken   string
		hubSplit   string
	)

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate leaderboard submission files",
		Long: `Validate leaderboard submission files the way the leaderboard CI does.

Each path is classified by content: a JSON array is a records file, a JSON
object is a trajectory log, anything else is ignored. Records files are
checked against the leaderboard schema, model string format, and recognized
providers; trajectory logs are checked for shape and run errors; evaluated
sample counts are cross-checked against the published benchmark sizes.

Expected sample counts come from the data hub by default. Use --counts-file
with a "benchmark,count" CSV for air-gapped runs; benchmarks whose count
cannot be determined are skipped, never failed.

The full report is always written as a JSON artifact; --junit additionally
writes it as JUnit XML for CI annotation. Exit codes: 0 when all checks
pass, 1 when the submission fails validation, 2 on runtime errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := resolveCountSource(countsFile, hubURL, hubToken, hubSplit)
			if err != nil {
				return err
			}

			validator := validation.NewValidator(counts)
			report := validator.ValidateFiles(cmd.Context(), args)

			// The artifact is written before the verdict so CI always has it.
			if err := saveValidationReport(report, reportPath); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			if junitPath != "" {
				if err := reporting.WriteJUnitXML(report, junitPath); err != nil {
					return fmt.Errorf("writing JUnit report: %w", err)
				}
			}

			w := cmd.OutOrStdout()
			displayValidationReport(w, report)
			fmt.Fprintf(w, "Report written to: %s\n", reportPath) //nolint:errcheck
			if junitPath != "" {
				fmt.Fprintf(w, "JUnit report written to: %s\n", junitPath) //nolint:errcheck
			}

			if !report.Passed {
				return &ValidationFailedError{
					Message: fmt.Sprintf("submission failed validation with %d error(s)", len(report.Errors)),
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&reportPath, "report", "r", "validation_report.json", "Output path for the JSON report artifact")
	cmd.Flags().StringVar(&junitPath, "junit", "", "Also write the report as JUnit XML to this path")
	cmd.Flags().StringVar(&countsFile, "counts-file", "", "CSV file of expected sample counts (benchmark,count) instead of the hub")
	cmd.Flags().StringVar(&hubURL, "hub", "", "Data hub base URL (default: the public hub)")
	cmd.Flags().StringVar(&hubToken, "token", "", "Hub access token (default: $TELBENCH_HUB_TOKEN or saved settings)")
	cmd.Flags().StringVar(&hubSplit, "split", "", "Dataset split to fetch counts for (default: test)")

	return cmd
}

// resolveCountSource picks where expected sample counts come from: a static
// CSV table when --counts-file is set, the data hub otherwise.
func resolveCountSource(countsFile, hubURL, token, split string) (validation.CountSource, error) {
	if countsFile != "" {
		counts, err := dataset.LoadCounts(countsFile)
		if err != nil {
			return nil, fmt.Errorf("loading counts file: %w", err)
		}
		return counts, nil
	}

	proj, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	if hubURL == "" {
		hubURL = proj.Hub.BaseURL
	}
	if split == "" {
		split = proj.Hub.Split
	}
	return hub.NewClient(hubURL, &hub.ClientOptions{
		Token: config.ResolveToken(token, loadUserSettings()),
		Split: split,
	}), nil
}

func saveValidationReport(report *models.ValidationReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

//nolint:errcheck // fmt.Fprintf to stdout; write errors are not actionable
func displayValidationReport(w writer, report *models.ValidationReport) {
	const totalWidth = 54

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("═", totalWidth))
	fmt.Fprintf(w, " SUBMISSION CHECKS\n")
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("═", totalWidth))

	for _, check := range models.AllChecks() {
		state := "ok"
		if !report.Checks[check] {
			state = "error"
		}
		writeStatus(w, statusIcon(state), check)
	}
	fmt.Fprintf(w, "\n")

	if len(report.SampleDetails) > 0 {
		displaySampleDetails(w, report)
	}

	if len(report.Errors) > 0 {
		writeSection(w, "❗", "Errors", fmt.Sprintf("%d", len(report.Errors)))
		for _, msg := range report.Errors {
			writeStatus(w, statusIcon("error"), msg)
		}
		fmt.Fprintf(w, "\n")
	}

	if report.Passed {
		fmt.Fprintf(w, "✅ Submission passed all checks.\n\n")
	} else {
		fmt.Fprintf(w, "❌ Submission failed validation.\n\n")
	}
}

//nolint:errcheck
func displaySampleDetails(w writer, report *models.ValidationReport) {
	const colBenchmark = 10
	const colExpected = 8
	const colActual = 6

	writeSection(w, "🔢", "Sample Counts", "")
	fmt.Fprintf(w, "   %s  %s  %s  %s\n",
		padRight("Benchmark", colBenchmark),
		padRight("Expected", colExpected),
		padRight("Actual", colActual),
		"Status")

	for _, b := range models.AllBenchmarks() {
		detail, ok := report.SampleDetails[string(b)]
		if !ok {
			continue
		}

		expected := "unknown"
		if detail.Expected != nil {
			expected = fmt.Sprintf("%d", *detail.Expected)
		}
		state, label := "ok", "ok"
		switch {
		case detail.Skipped:
			state, label = "warning", "skipped"
		case !detail.Valid:
			state, label = "error", "mismatch"
		}
		fmt.Fprintf(w, "   %s  %s  %s  %s %s\n",
			padRight(string(b), colBenchmark),
			padRight(expected, colExpected),
			padRight(fmt.Sprintf("%d", detail.Actual), colActual),
			statusIcon(state), label)
	}
	fmt.Fprintf(w, "\n")
}
