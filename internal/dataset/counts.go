// Package dataset loads the local artifacts the toolkit works from:
// benchmark size CSVs and leaderboard records files.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/open-telco/telbench/internal/models"
)

// StaticCounts is an offline source of published benchmark sizes, loaded
// from a CSV instead of the hub. It satisfies the validation package's
// CountSource interface.
type StaticCounts map[models.Benchmark]int

// ExpectedCount returns the published sample count for b. Benchmarks
// absent from the file report an error, which the sample count validator
// treats as unknown and skips.
func (s StaticCounts) ExpectedCount(_ context.Context, b models.Benchmark) (int, error) {
	n, ok := s[b]
	if !ok {
		return 0, fmt.Errorf("no count for benchmark %q", b)
	}
	return n, nil
}

// LoadCounts reads a benchmark size CSV. The header row must name a
// "benchmark" and a "count" column; extra columns are ignored. Benchmark
// names match by keyword, so "teleqna" and "3gpp_tsg" both resolve.
func LoadCounts(path string) (StaticCounts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("counts: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("counts: %s is empty (no header row)", path)
		}
		return nil, fmt.Errorf("counts: parse %s: %w", path, err)
	}

	benchCol, countCol := -1, -1
	for i, name := range header {
		switch name {
		case "benchmark":
			benchCol = i
		case "count":
			countCol = i
		}
	}
	if benchCol < 0 {
		return nil, fmt.Errorf("counts: %s is missing a benchmark column", path)
	}
	if countCol < 0 {
		return nil, fmt.Errorf("counts: %s is missing a count column", path)
	}

	counts := make(StaticCounts, len(models.AllBenchmarks()))
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("counts: parse %s: %w", path, err)
		}

		b, ok := models.TaskBenchmark(row[benchCol])
		if !ok {
			return nil, fmt.Errorf("counts: row %d names unknown benchmark %q", line, row[benchCol])
		}
		n, err := strconv.Atoi(row[countCol])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("counts: row %d has invalid count %q", line, row[countCol])
		}
		counts[b] = n
	}
	return counts, nil
}
