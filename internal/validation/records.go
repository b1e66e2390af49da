package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/open-telco/telbench/internal/models"
)

// RecordsFileResult is the outcome of checking one leaderboard records file.
// Each error class feeds a differently named check, so they are kept apart
// instead of flattened into one list.
type RecordsFileResult struct {
	// Rows are the entries that decoded cleanly; rows with shape problems
	// are omitted here and reported through SchemaErrors.
	Rows []models.LeaderboardEntry

	// SchemaErrors are JSON Schema violations.
	SchemaErrors []string

	// FormatErrors are model strings that do not match "name (Provider)".
	FormatErrors []string

	// ProviderErrors are well-formed model strings naming an unrecognized
	// provider.
	ProviderErrors []string

	// ScoreErrors are decoded score triples that break their invariants.
	ScoreErrors []string
}

// CheckRecordsFile reads and checks one records file. The returned error
// covers unreadable files and content that is not a JSON array; everything
// else lands in the result fields so one pass surfaces every problem.
func CheckRecordsFile(path string) (RecordsFileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RecordsFileResult{}, fmt.Errorf("reading records file: %w", err)
	}
	return CheckRecordsBytes(data)
}

// CheckRecordsBytes is CheckRecordsFile over in-memory content.
func CheckRecordsBytes(data []byte) (RecordsFileResult, error) {
	var res RecordsFileResult

	var rawRows []json.RawMessage
	if err := json.Unmarshal(data, &rawRows); err != nil {
		return res, fmt.Errorf("invalid records JSON: %w", err)
	}
	res.SchemaErrors = ValidateRecordsBytes(data)

	seen := map[string]struct{}{}
	for _, raw := range rawRows {
		var row models.LeaderboardEntry
		if err := json.Unmarshal(raw, &row); err != nil {
			// Row shape problems already surface through the schema pass.
			continue
		}
		res.Rows = append(res.Rows, row)

		// Model checks run once per distinct model string, not per row.
		if _, dup := seen[row.Model]; !dup {
			seen[row.Model] = struct{}{}
			if _, err := models.ParseModelString(row.Model); err != nil {
				if errors.Is(err, models.ErrUnknownProvider) {
					res.ProviderErrors = append(res.ProviderErrors, err.Error())
				} else {
					res.FormatErrors = append(res.FormatErrors, err.Error())
				}
			}
		}

		for _, b := range models.AllBenchmarks() {
			if s := row.Score(b); s != nil {
				if err := s.Validate(); err != nil {
					res.ScoreErrors = append(res.ScoreErrors, fmt.Sprintf("%s %s: %v", row.Model, b.Column(), err))
				}
			}
		}
	}
	return res, nil
}
