package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/open-telco/telbench/internal/models"
)

// LoadRecords reads a leaderboard records file (a JSON array of rows).
// A missing file loads as an empty board with a nil error so callers can
// merge the first submission into it.
func LoadRecords(path string) ([]models.LeaderboardEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("records: read %s: %w", path, err)
	}

	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("records: parse %s: %w", path, err)
	}
	return entries, nil
}

// SaveRecords writes the leaderboard rows as indented JSON.
func SaveRecords(path string, entries []models.LeaderboardEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("records: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("records: write %s: %w", path, err)
	}
	return nil
}
