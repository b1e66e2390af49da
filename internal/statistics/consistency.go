package statistics

import (
	"regexp"
	"strconv"
	"strings"
)

// ConsistencyRecord maps a task name to its boolean correctness outcomes,
// one per epoch, in epoch order. A task is inconsistent when its sequence
// contains both true and false. The record is append-only while epochs are
// parsed and read-only once analysis starts.
type ConsistencyRecord map[string][]bool

// Append adds one epoch outcome for task.
func (r ConsistencyRecord) Append(task string, correct bool) {
	r[task] = append(r[task], correct)
}

// TaskAccuracies returns the mean correctness per task, in unspecified
// order. Tasks with no outcomes are omitted.
func (r ConsistencyRecord) TaskAccuracies() []float64 {
	out := make([]float64, 0, len(r))
	for _, outcomes := range r {
		if len(outcomes) == 0 {
			continue
		}
		hits := 0
		for _, ok := range outcomes {
			if ok {
				hits++
			}
		}
		out = append(out, float64(hits)/float64(len(outcomes)))
	}
	return out
}

// ScoreEntry is one named score attached to an evaluation log record.
type ScoreEntry struct {
	Name  string
	Value float64
}

// Tracker accumulates per-task correctness across repeated evaluation
// epochs for a single target model.
type Tracker struct {
	model string
	rec   ConsistencyRecord
}

// NewTracker returns a tracker filtering observations to model (exact
// string match).
func NewTracker(model string) *Tracker {
	return &Tracker{model: model, rec: ConsistencyRecord{}}
}

// Observe feeds one evaluation log record to the tracker. Records for other
// models are ignored. Only the first score named "accuracy" contributes;
// records whose scores carry no accuracy entry are skipped entirely, so
// they leave no trace in any task's outcome list.
func (t *Tracker) Observe(model, task string, scores []ScoreEntry) {
	if model != t.model {
		return
	}
	for _, s := range scores {
		if s.Name == "accuracy" {
			t.rec.Append(task, s.Value > 0)
			return
		}
	}
}

// Record returns the accumulated consistency record.
func (t *Tracker) Record() ConsistencyRecord {
	return t.rec
}

// Raw-output fallback when no structured log records parse. Evaluation
// runners print per-task accuracy lines; the benchmark keyword anchors the
// match and a decimal accuracy follows.
var taskAccuracyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(telelogs|telemath|teleqna|three_gpp).*?accuracy[=:\s]+([0-9.]+)`),
	regexp.MustCompile(`(3gpp_tsg).*?accuracy[=:\s]+([0-9.]+)`),
}

// ConsistencyFromOutput extracts task→correctness pairs from raw combined
// runner output. Correctness is accuracy > 0. Used only when every
// structured log record failed to parse. Matching is over lowercased
// output so record keys are always the bare benchmark keywords.
func ConsistencyFromOutput(output string) ConsistencyRecord {
	rec := ConsistencyRecord{}
	output = strings.ToLower(output)
	for _, pat := range taskAccuracyPatterns {
		for _, m := range pat.FindAllStringSubmatch(output, -1) {
			acc, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			rec.Append(m[1], acc > 0)
		}
	}
	return rec
}
