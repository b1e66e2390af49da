package trajectory

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Source yields parsed trajectory records. Implementations re-read their
// backing store on every call, so a Source can be consumed repeatedly and
// picks up files written between calls.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// DirSource parses every .json file under Dir, in lexical walk order.
// Malformed files are skipped with a debug log entry; a missing directory
// yields no records rather than an error, since a failed evaluation run
// legitimately leaves no logs behind.
type DirSource struct {
	Dir string
}

func (s DirSource) Records(ctx context.Context) ([]Record, error) {
	var records []Record
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rec, perr := ParseFile(path)
		if perr != nil {
			slog.Debug("skipping malformed trajectory", "file", path, "error", perr)
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DefaultParseWorkers caps concurrent file parses in ParallelDirSource.
const DefaultParseWorkers = 4

// ParallelDirSource parses the .json files under Dir concurrently. A full
// benchmark run leaves one large log per task, so parsing them in parallel
// keeps bundling responsive. Skip and missing-directory behavior match
// DirSource; records come back in walk order regardless of which parse
// finished first.
type ParallelDirSource struct {
	Dir string

	// Workers caps concurrent parses. Zero means DefaultParseWorkers.
	Workers int
}

func (s ParallelDirSource) Records(ctx context.Context) ([]Record, error) {
	var paths []string
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	workers := s.Workers
	if workers <= 0 {
		workers = DefaultParseWorkers
	}

	parsed := make([]*Record, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, perr := ParseFile(path)
			if perr != nil {
				slog.Debug("skipping malformed trajectory", "file", path, "error", perr)
				return nil
			}
			parsed[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(parsed))
	for _, rec := range parsed {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// ModelRecords filters records to those belonging to model.
func ModelRecords(records []Record, model string) []Record {
	var out []Record
	for _, r := range records {
		if r.MatchesModel(model) {
			out = append(out, r)
		}
	}
	return out
}
