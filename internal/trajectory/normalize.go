package trajectory

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/go-viper/mapstructure/v2"

	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/statistics"
)

// ErrUnrecognizedFormat marks content that parses as JSON but matches
// neither trajectory shape.
var ErrUnrecognizedFormat = errors.New("missing eval data, not a recognized trajectory log")

// inspectLog is the structured runner format: run metadata under "eval",
// scorer metrics under "results".
type inspectLog struct {
	Status string `mapstructure:"status"`
	Error  any    `mapstructure:"error"`
	Eval   struct {
		Model   string `mapstructure:"model"`
		Task    string `mapstructure:"task"`
		Dataset struct {
			Samples   int   `mapstructure:"samples"`
			SampleIDs []any `mapstructure:"sample_ids"`
		} `mapstructure:"dataset"`
	} `mapstructure:"eval"`
	Results struct {
		Scores []struct {
			Name    string `mapstructure:"name"`
			Metrics map[string]struct {
				Value float64 `mapstructure:"value"`
			} `mapstructure:"metrics"`
		} `mapstructure:"scores"`
	} `mapstructure:"results"`
}

// legacyLog is the flat pre-runner format still accepted from old
// submissions.
type legacyLog struct {
	Status  string `mapstructure:"status"`
	Error   any    `mapstructure:"error"`
	Model   string `mapstructure:"model"`
	Task    string `mapstructure:"task"`
	Results struct {
		Scores []struct {
			Name  string  `mapstructure:"name"`
			Value float64 `mapstructure:"value"`
		} `mapstructure:"scores"`
	} `mapstructure:"results"`
	SampleIDs []any `mapstructure:"sample_ids"`
}

// ParseBytes decodes one trajectory log into the canonical record. The
// shape is probed by marker key: "eval" selects the structured format, a
// top-level "model" plus "results" selects the legacy format. Anything
// else fails with [ErrUnrecognizedFormat], which the caller may treat as a
// skippable malformed record.
func ParseBytes(data []byte) (Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if _, ok := raw["eval"]; ok {
		var il inspectLog
		if err := decode(raw, &il); err != nil {
			return Record{}, fmt.Errorf("malformed eval log: %w", err)
		}
		return il.normalize(), nil
	}
	if _, ok := raw["model"]; ok {
		if _, ok := raw["results"]; ok {
			var ll legacyLog
			if err := decode(raw, &ll); err != nil {
				return Record{}, fmt.Errorf("malformed legacy log: %w", err)
			}
			return ll.normalize(), nil
		}
	}
	return Record{}, ErrUnrecognizedFormat
}

// ParseFile reads and normalizes one trajectory file.
func ParseFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("reading trajectory: %w", err)
	}
	rec, err := ParseBytes(data)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", path, err)
	}
	rec.File = path
	return rec, nil
}

// decode maps a parsed JSON object onto a typed shape. Weak typing converts
// JSON numbers onto int fields.
func decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func (il inspectLog) normalize() Record {
	rec := Record{
		Model:  il.Eval.Model,
		Task:   il.Eval.Task,
		Status: il.Status,
		ErrMsg: errorMessage(il.Error),
	}
	rec.Benchmark, _ = models.TaskBenchmark(il.Eval.Task)
	rec.SampleIDs = sampleIDStrings(il.Eval.Dataset.SampleIDs)
	rec.SampleCount = il.Eval.Dataset.Samples
	if rec.SampleCount == 0 {
		rec.SampleCount = len(rec.SampleIDs)
	}

	for i, scorer := range il.Results.Scores {
		if acc, ok := scorer.Metrics["accuracy"]; ok {
			rec.Scores = append(rec.Scores, statistics.ScoreEntry{Name: "accuracy", Value: acc.Value})
			if i == 0 {
				v := acc.Value
				rec.Accuracy = &v
			}
		}
		if se, ok := scorer.Metrics["stderr"]; ok {
			rec.Scores = append(rec.Scores, statistics.ScoreEntry{Name: "stderr", Value: se.Value})
			if i == 0 {
				v := se.Value
				rec.Stderr = &v
			}
		}
		rest := make([]string, 0, len(scorer.Metrics))
		for name := range scorer.Metrics {
			if name != "accuracy" && name != "stderr" {
				rest = append(rest, name)
			}
		}
		sort.Strings(rest)
		for _, name := range rest {
			rec.Scores = append(rec.Scores, statistics.ScoreEntry{Name: name, Value: scorer.Metrics[name].Value})
		}
	}
	return rec
}

func (ll legacyLog) normalize() Record {
	rec := Record{
		Model:  ll.Model,
		Task:   ll.Task,
		Status: ll.Status,
		ErrMsg: errorMessage(ll.Error),
	}
	rec.Benchmark, _ = models.TaskBenchmark(ll.Task)
	rec.SampleIDs = sampleIDStrings(ll.SampleIDs)
	rec.SampleCount = len(rec.SampleIDs)

	for _, s := range ll.Results.Scores {
		rec.Scores = append(rec.Scores, statistics.ScoreEntry{Name: s.Name, Value: s.Value})
		if s.Name == "accuracy" && rec.Accuracy == nil {
			v := s.Value
			rec.Accuracy = &v
		}
		if s.Name == "stderr" && rec.Stderr == nil {
			v := s.Value
			rec.Stderr = &v
		}
	}
	return rec
}

// errorMessage flattens the runner's error field, which is either a plain
// string or a structured object carrying a message.
func errorMessage(v any) string {
	switch e := v.(type) {
	case nil:
		return ""
	case string:
		return e
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("%v", v)
}

// sampleIDStrings renders raw identifiers (strings or numbers, depending on
// the dataset) as strings so set union treats 7 and "7" from different
// epochs as the same sample. nil in, nil out: a log without the field stays
// distinguishable from one listing zero samples.
func sampleIDStrings(raw []any) []string {
	if raw == nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch x := v.(type) {
		case string:
			out = append(out, x)
		case float64:
			if x == math.Trunc(x) {
				out = append(out, strconv.FormatInt(int64(x), 10))
			} else {
				out = append(out, strconv.FormatFloat(x, 'g', -1, 64))
			}
		default:
			out = append(out, fmt.Sprintf("%v", x))
		}
	}
	return out
}
