package models

// Check names reported by submission validation. The report's Checks map is
// keyed by these so CI annotations stay stable across releases.
const (
	CheckRecordsExist       = "records_exist"
	CheckRecordsSchema      = "records_schema"
	CheckJSONValid          = "json_valid"
	CheckModelFormat        = "model_format"
	CheckProviderRecognized = "provider_recognized"
	CheckTrajectoryFormat   = "trajectory_format"
	CheckSampleCountValid   = "sample_count_valid"
	CheckNoErrors           = "no_errors"
)

// AllChecks lists every check a validation report carries, in artifact
// order.
func AllChecks() []string {
	return []string{
		CheckRecordsExist,
		CheckRecordsSchema,
		CheckJSONValid,
		CheckModelFormat,
		CheckProviderRecognized,
		CheckTrajectoryFormat,
		CheckNoErrors,
		CheckSampleCountValid,
	}
}

// SampleDetail is the per-benchmark outcome of sample-count validation.
// Expected is nil when the published count could not be fetched; such
// benchmarks are valid-but-skipped and never block a submission.
type SampleDetail struct {
	Expected *int `json:"expected"`
	Actual   int  `json:"actual"`
	Valid    bool `json:"valid"`
	Skipped  bool `json:"skipped,omitempty"`
}

// ValidationReport is the artifact written by the validate workflow. Data
// problems land in Errors; Checks records each named check's verdict;
// SampleDetails is keyed by benchmark name.
type ValidationReport struct {
	Passed        bool                    `json:"passed"`
	Errors        []string                `json:"errors"`
	Checks        map[string]bool         `json:"checks"`
	SampleDetails map[string]SampleDetail `json:"sampleDetails"`
}

// NewValidationReport returns a report with every check passing, ready to
// accumulate verdicts. Checks nothing flips stay true, so an artifact
// always carries the full check set.
func NewValidationReport() *ValidationReport {
	r := &ValidationReport{
		Passed:        true,
		Errors:        []string{},
		Checks:        make(map[string]bool, 8),
		SampleDetails: map[string]SampleDetail{},
	}
	for _, check := range AllChecks() {
		r.Checks[check] = true
	}
	return r
}

// Record stores a check verdict, ANDed with any earlier verdict for the
// same check so one bad file fails the check across a whole submission. A
// false verdict marks the report failed; messages are appended to Errors.
func (r *ValidationReport) Record(check string, ok bool, msgs ...string) {
	prev, seen := r.Checks[check]
	r.Checks[check] = (!seen || prev) && ok
	if !ok {
		r.Passed = false
		r.Errors = append(r.Errors, msgs...)
	}
}

// Fail appends data errors not attributed to a named check.
func (r *ValidationReport) Fail(msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	r.Passed = false
	r.Errors = append(r.Errors, msgs...)
}
