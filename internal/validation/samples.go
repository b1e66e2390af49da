package validation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/trajectory"
)

// CountSource supplies the published sample count for a benchmark. An error
// means the count is unknown after the source exhausted its retries; the
// validator then skips that benchmark instead of failing it.
type CountSource interface {
	ExpectedCount(ctx context.Context, b models.Benchmark) (int, error)
}

// SampleIDSet is the union of evaluated sample identifiers per benchmark.
// Repeated epochs contribute the same identifiers, so duplicates collapse.
type SampleIDSet map[models.Benchmark]map[string]struct{}

// BuildSampleIDSet unions the sample identifiers of every record, keyed by
// the benchmark its task maps to. Records with no benchmark mapping or no
// sample ID list are ignored; a record listing zero samples still marks its
// benchmark as covered.
func BuildSampleIDSet(records []trajectory.Record) SampleIDSet {
	set := SampleIDSet{}
	for _, rec := range records {
		if rec.Benchmark == "" || rec.SampleIDs == nil {
			continue
		}
		ids := set[rec.Benchmark]
		if ids == nil {
			ids = map[string]struct{}{}
			set[rec.Benchmark] = ids
		}
		for _, id := range rec.SampleIDs {
			ids[id] = struct{}{}
		}
	}
	return set
}

// ValidateSampleCounts cross-checks the evaluated sample IDs against the
// published counts for every benchmark. The returned details are keyed by
// benchmark name. ok is the conjunction of per-benchmark validity over
// benchmarks whose expected count is known; unknown counts are recorded
// valid-but-skipped and never block a submission.
func ValidateSampleCounts(ctx context.Context, records []trajectory.Record, source CountSource) (details map[string]models.SampleDetail, errs []string, ok bool) {
	set := BuildSampleIDSet(records)
	details = map[string]models.SampleDetail{}
	ok = true

	for _, b := range models.AllBenchmarks() {
		actual := len(set[b])
		_, covered := set[b]

		expected, err := source.ExpectedCount(ctx, b)
		if err != nil {
			slog.Warn("expected sample count unknown, skipping benchmark",
				"benchmark", b, "error", err)
			details[string(b)] = models.SampleDetail{
				Expected: nil,
				Actual:   actual,
				Valid:    true,
				Skipped:  true,
			}
			continue
		}

		detail := models.SampleDetail{Expected: &expected, Actual: actual}
		var msg string
		switch {
		case !covered:
			msg = "No trajectory files found for this benchmark."
		case actual == expected:
			detail.Valid = true
		case actual < expected:
			msg = fmt.Sprintf("Only %d/%d samples evaluated. Did you use --limit? Full benchmark required for submission.", actual, expected)
		default:
			msg = fmt.Sprintf("%d samples found, expected %d. Possible duplicate evaluations or wrong dataset split.", actual, expected)
		}
		if msg != "" {
			errs = append(errs, fmt.Sprintf("%s: %s", b, msg))
			ok = false
		}
		details[string(b)] = detail
	}
	return details, errs, ok
}
