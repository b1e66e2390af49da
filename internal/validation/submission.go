// Package validation checks leaderboard submissions: records files against
// the embedded JSON Schema and per-row invariants, trajectory logs for
// shape and run errors, and evaluated sample counts against the published
// dataset sizes.
package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/trajectory"
)

// Validator runs the full submission check suite. Counts supplies the
// published per-benchmark sample totals; a source that errors marks the
// affected benchmarks skipped rather than failed.
type Validator struct {
	Counts CountSource
}

func NewValidator(counts CountSource) *Validator {
	return &Validator{Counts: counts}
}

// ValidateFiles checks a submission given its changed file paths, the way
// the leaderboard CI invokes it. Paths are partitioned by content: a JSON
// array is a records file, a JSON object is a trajectory log, anything
// else is ignored. The returned report is always complete; nothing here
// fails with a Go error because every problem is submission data, not
// infrastructure.
func (v *Validator) ValidateFiles(ctx context.Context, paths []string) *models.ValidationReport {
	report := models.NewValidationReport()

	var (
		recs         []trajectory.Record
		recordsFound bool
		trajectories int
	)

	for _, path := range paths {
		if path == "" || !strings.HasSuffix(path, ".json") {
			continue
		}
		name := filepath.Base(path)

		data, err := os.ReadFile(path)
		if err != nil {
			trajectories++
			report.Record(models.CheckJSONValid, false, fmt.Sprintf("Failed to read %s: %v", name, err))
			continue
		}

		if isRecordsContent(data) {
			recordsFound = true
			checkRecords(report, name, data)
		} else {
			trajectories++
			if rec, ok := checkTrajectory(report, name, data); ok {
				recs = append(recs, rec)
			}
		}
	}

	if trajectories > 0 {
		details, errs, ok := ValidateSampleCounts(ctx, recs, v.Counts)
		report.SampleDetails = details
		report.Record(models.CheckSampleCountValid, ok, errs...)
	}

	if !recordsFound {
		report.Record(models.CheckRecordsExist, false, "No records file found in submission")
	}
	if trajectories == 0 {
		report.Record(models.CheckJSONValid, false)
		report.Record(models.CheckTrajectoryFormat, false)
		report.Record(models.CheckNoErrors, false)
		report.Record(models.CheckSampleCountValid, false)
		report.Fail("No JSON trajectory files found in submission")
	}
	return report
}

// isRecordsContent distinguishes the two submission file kinds: leaderboard
// records are a JSON array of rows, trajectory logs a JSON object.
func isRecordsContent(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

func checkRecords(report *models.ValidationReport, name string, data []byte) {
	res, err := CheckRecordsBytes(data)
	if err != nil {
		report.Fail(fmt.Sprintf("%s: %v", name, err))
		report.Record(models.CheckRecordsSchema, false)
		report.Record(models.CheckModelFormat, false)
		report.Record(models.CheckProviderRecognized, false)
		return
	}
	report.Record(models.CheckRecordsSchema, len(res.SchemaErrors) == 0, prefixAll(name, res.SchemaErrors)...)
	report.Record(models.CheckModelFormat, len(res.FormatErrors) == 0, res.FormatErrors...)
	report.Record(models.CheckProviderRecognized, len(res.ProviderErrors) == 0, res.ProviderErrors...)
	report.Fail(res.ScoreErrors...)
}

func checkTrajectory(report *models.ValidationReport, name string, data []byte) (trajectory.Record, bool) {
	rec, err := trajectory.ParseBytes(data)
	switch {
	case errors.Is(err, trajectory.ErrUnrecognizedFormat):
		report.Record(models.CheckTrajectoryFormat, false, fmt.Sprintf("%s: %v", name, err))
		return trajectory.Record{}, false
	case err != nil:
		report.Record(models.CheckJSONValid, false, fmt.Sprintf("Invalid JSON in %s: %v", name, err))
		return trajectory.Record{}, false
	}

	if rec.HasError() {
		msg := rec.ErrMsg
		if msg == "" {
			msg = "unknown error"
		}
		report.Record(models.CheckNoErrors, false, fmt.Sprintf("%s: Trajectory has error: %s", name, msg))
	}
	rec.File = name
	return rec, true
}

func prefixAll(prefix string, msgs []string) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = fmt.Sprintf("%s: %s", prefix, m)
	}
	return out
}
