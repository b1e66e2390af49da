package submission

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/utils"
)

// RecordsFileName is the archive member carrying the leaderboard row.
const RecordsFileName = "records.json"

// WriteArchive packs the bundle into a .tar.gz at path: records.json with
// the single leaderboard row, plus every matched trajectory file under
// trajectories/. Trajectories with unknown file paths (records built in
// memory) are skipped.
func WriteArchive(path string, bundle *Bundle) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("creating bundle dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bundle: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	row, err := json.MarshalIndent([]models.LeaderboardEntry{bundle.Entry}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records row: %w", err)
	}
	if err := writeTarFile(tw, RecordsFileName, row); err != nil {
		return err
	}

	seen := map[string]int{}
	for _, rec := range bundle.Trajectories {
		if rec.File == "" {
			continue
		}
		data, err := os.ReadFile(rec.File)
		if err != nil {
			return fmt.Errorf("reading trajectory %s: %w", rec.File, err)
		}

		name := filepath.Base(rec.File)
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%d_%s", n, name)
		}
		seen[filepath.Base(rec.File)]++

		if err := writeTarFile(tw, filepath.Join("trajectories", name), data); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("finalizing compression: %w", err)
	}
	return nil
}

func writeTarFile(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing %s header: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
