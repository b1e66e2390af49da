// Package webapi serves the local leaderboard viewer: a read-only JSON API
// over a records file, with rows ranked by their Telco Capability Index.
package webapi

import (
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/open-telco/telbench/internal/dataset"
	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/scoring"
	"github.com/open-telco/telbench/internal/utils"
)

// ErrEntryNotFound is returned when a model does not match any leaderboard row.
var ErrEntryNotFound = errors.New("entry not found")

// Store provides access to leaderboard data.
type Store interface {
	// ListEntries returns all rows ranked best-first. A non-empty provider
	// filters the ranked rows; rows keep their overall rank.
	ListEntries(provider string) ([]EntryResponse, error)
	// GetEntry returns a single row by its model string.
	GetEntry(model string) (*EntryResponse, error)
	// Summary returns aggregate metrics across the board.
	Summary() (*SummaryResponse, error)
}

// FileStore reads leaderboard rows from a records JSON file.
type FileStore struct {
	path string
	cfg  scoring.TCIConfig

	mu      sync.RWMutex
	entries []models.LeaderboardEntry
	loaded  bool
}

// NewFileStore creates a FileStore over the records file at path, ranked
// with the published index calibration.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		cfg:  scoring.DefaultTCIConfig(),
	}
}

// load reads the records file. A missing file is an empty board.
func (fs *FileStore) load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := dataset.LoadRecords(fs.path)
	if err != nil {
		return err
	}
	fs.entries = entries
	fs.loaded = true
	return nil
}

// ensureLoaded loads data if not already loaded.
func (fs *FileStore) ensureLoaded() error {
	fs.mu.RLock()
	if fs.loaded {
		fs.mu.RUnlock()
		return nil
	}
	fs.mu.RUnlock()
	return fs.load()
}

// Reload forces a fresh read of the records file from disk.
func (fs *FileStore) Reload() error {
	return fs.load()
}

// entryResponse maps a ranked row to its API shape.
func entryResponse(re scoring.RankedEntry) EntryResponse {
	resp := EntryResponse{
		Rank:     re.Rank,
		Model:    re.Model,
		TCI:      re.TCI,
		TCIError: re.TCIError,
		Scores:   []ScoreResponse{},
		Date:     re.Date,
	}
	if id, err := models.ParseModelString(re.Model); err == nil {
		resp.Name = id.Name
		resp.Provider = id.Provider
	}
	for _, b := range models.AllBenchmarks() {
		s := re.Score(b)
		if s == nil {
			continue
		}
		resp.Scores = append(resp.Scores, ScoreResponse{
			Benchmark:   b.Column(),
			Score:       s.Value,
			Stderr:      s.Stderr,
			SampleCount: int(s.SampleCount),
		})
	}
	return resp
}

// ListEntries returns all rows ranked best-first, optionally filtered by
// provider. Filtering happens after ranking so rows keep their overall rank.
func (fs *FileStore) ListEntries(provider string) ([]EntryResponse, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	ranked := fs.cfg.Rank(fs.entries)
	out := make([]EntryResponse, 0, len(ranked))
	for _, re := range ranked {
		resp := entryResponse(re)
		if provider != "" && !strings.EqualFold(resp.Provider, provider) {
			continue
		}
		out = append(out, resp)
	}
	return out, nil
}

// GetEntry returns the row whose model string equals model. When no exact
// match exists it falls back to a case-insensitive match on the bare model
// name, so /api/leaderboard/gpt-4o works without the provider suffix.
func (fs *FileStore) GetEntry(model string) (*EntryResponse, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	ranked := fs.cfg.Rank(fs.entries)
	for _, re := range ranked {
		if re.Model == model {
			resp := entryResponse(re)
			return &resp, nil
		}
	}
	for _, re := range ranked {
		id, err := models.ParseModelString(re.Model)
		if err != nil {
			continue
		}
		if strings.EqualFold(id.Name, model) {
			resp := entryResponse(re)
			return &resp, nil
		}
	}
	return nil, ErrEntryNotFound
}

// Summary returns aggregate metrics across the board.
func (fs *FileStore) Summary() (*SummaryResponse, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	ranked := fs.cfg.Rank(fs.entries)
	resp := &SummaryResponse{TotalEntries: len(ranked)}

	providers := make(map[string]struct{})
	sum := 0.0
	for _, re := range ranked {
		if id, err := models.ParseModelString(re.Model); err == nil {
			providers[id.Provider] = struct{}{}
		}
		if re.TCI != nil {
			resp.RankedEntries++
			sum += *re.TCI
		}
		// ISO dates compare lexically.
		if re.Date > resp.LastUpdated {
			resp.LastUpdated = re.Date
		}
	}
	resp.Providers = len(providers)

	if resp.RankedEntries > 0 {
		// Rank sorts defined indexes first, so the top row is ranked[0].
		top := ranked[0]
		resp.TopModel = top.Model
		resp.TopTCI = utils.Ptr(*top.TCI)
		resp.AvgTCI = utils.Ptr(round1(sum / float64(resp.RankedEntries)))
	}

	return resp, nil
}

func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

// Ensure FileStore satisfies Store.
var _ Store = (*FileStore)(nil)
