package submission

import (
	"archive/tar"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/trajectory"
)

func readArchive(t *testing.T, path string) map[string][]byte {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	files := map[string][]byte{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[hdr.Name] = data
	}
	return files
}

func TestWriteArchive(t *testing.T) {
	dir := t.TempDir()
	traj := filepath.Join(dir, "2025-06-01T10-00-00_teleqna.json")
	require.NoError(t, os.WriteFile(traj, []byte(`{"eval":{"model":"openai/gpt-4o"}}`), 0o644))

	entry := models.LeaderboardEntry{
		Model:   "gpt-4o (Openai)",
		TeleQnA: &models.BenchmarkScore{Value: 74.2, Stderr: 1.1, SampleCount: 4},
		Date:    "2025-06-01",
	}
	bundle := &Bundle{
		Entry: entry,
		Trajectories: []trajectory.Record{
			{Model: "openai/gpt-4o", File: traj},
			{Model: "openai/gpt-4o"}, // in-memory record, no file to pack
		},
	}

	out := filepath.Join(dir, "bundles", "gpt-4o_submission.tar.gz")
	require.NoError(t, WriteArchive(out, bundle))

	files := readArchive(t, out)
	require.Contains(t, files, "records.json")
	require.Contains(t, files, "trajectories/2025-06-01T10-00-00_teleqna.json")
	assert.Len(t, files, 2)

	var rows []models.LeaderboardEntry
	require.NoError(t, json.Unmarshal(files["records.json"], &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "gpt-4o (Openai)", rows[0].Model)
	require.NotNil(t, rows[0].TeleQnA)
	assert.Equal(t, 74.2, rows[0].TeleQnA.Value)

	assert.JSONEq(t, `{"eval":{"model":"openai/gpt-4o"}}`, string(files["trajectories/2025-06-01T10-00-00_teleqna.json"]))
}

func TestWriteArchive_DisambiguatesDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "rerun")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	first := filepath.Join(dir, "run.json")
	second := filepath.Join(sub, "run.json")
	require.NoError(t, os.WriteFile(first, []byte(`{"epoch":1}`), 0o644))
	require.NoError(t, os.WriteFile(second, []byte(`{"epoch":2}`), 0o644))

	bundle := &Bundle{
		Entry: models.LeaderboardEntry{Model: "gpt-4o (Openai)", Date: "2025-06-01"},
		Trajectories: []trajectory.Record{
			{File: first},
			{File: second},
		},
	}

	out := filepath.Join(dir, "bundle.tar.gz")
	require.NoError(t, WriteArchive(out, bundle))

	files := readArchive(t, out)
	assert.Contains(t, files, "trajectories/run.json")
	assert.Contains(t, files, "trajectories/1_run.json")
}

func TestWriteArchive_MissingTrajectoryFails(t *testing.T) {
	bundle := &Bundle{
		Entry:        models.LeaderboardEntry{Model: "gpt-4o (Openai)"},
		Trajectories: []trajectory.Record{{File: filepath.Join(t.TempDir(), "gone.json")}},
	}

	err := WriteArchive(filepath.Join(t.TempDir(), "bundle.tar.gz"), bundle)
	assert.ErrorContains(t, err, "reading trajectory")
}
