package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/scoring"
)

const boardRecords = `[
  {
    "model": "gpt-4o (Openai)",
    "teleqna": [74.2, 1.0, 500],
    "telelogs": [48.0, 2.1, 100],
    "telemath": [52.5, 1.9, 200],
    "3gpp_tsg": [61.0, 1.4, 300],
    "date": "2026-03-01"
  },
  {
    "model": "gemini-pro (Google)",
    "teleqna": [70.0, 1.2, 500],
    "telelogs": [45.0, 2.0, 100],
    "telemath": [50.0, 1.8, 200],
    "3gpp_tsg": [58.0, 1.5, 300],
    "date": "2026-02-15"
  }
]`

func TestLeaderboardCommandFromRecords(t *testing.T) {
	recordsPath := writeTestFile(t, t.TempDir(), "records.json", boardRecords)

	cmd := newLeaderboardCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"--records", recordsPath})

	err := cmd.Execute()
	require.NoError(t, err)

	result := output.String()
	assert.Contains(t, result, "OPEN TELCO LLM LEADERBOARD")
	assert.Contains(t, result, "gpt-4o (Openai)")
	assert.Contains(t, result, "gemini-pro (Google)")
	assert.Contains(t, result, "1   ")
	assert.Contains(t, result, "2   ")
}

func TestLeaderboardCommandJSON(t *testing.T) {
	recordsPath := writeTestFile(t, t.TempDir(), "records.json", boardRecords)

	cmd := newLeaderboardCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"--records", recordsPath, "--json"})

	err := cmd.Execute()
	require.NoError(t, err)

	var ranked []scoring.RankedEntry
	require.NoError(t, json.Unmarshal(output.Bytes(), &ranked))
	require.Len(t, ranked, 2)

	// The stronger model ranks first regardless of input order.
	assert.Equal(t, "gpt-4o (Openai)", ranked[0].Model)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestLeaderboardCommandMerge(t *testing.T) {
	tmpDir := t.TempDir()
	recordsPath := writeTestFile(t, tmpDir, "records.json", boardRecords)

	// A re-submission of gpt-4o replaces the existing row outright.
	resubmission := `[
  {
    "model": "gpt-4o (Openai)",
    "teleqna": [80.0, 0.9, 500],
    "telelogs": [55.0, 1.8, 100],
    "telemath": [60.0, 1.5, 200],
    "3gpp_tsg": [65.0, 1.2, 300],
    "date": "2026-08-25"
  }
]`
	mergePath := writeTestFile(t, tmpDir, "incoming.json", resubmission)

	cmd := newLeaderboardCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"--records", recordsPath, "--merge", mergePath, "--json"})

	err := cmd.Execute()
	require.NoError(t, err)

	var ranked []scoring.RankedEntry
	require.NoError(t, json.Unmarshal(output.Bytes(), &ranked))
	require.Len(t, ranked, 2, "merge replaces the row, it does not append")

	assert.Equal(t, "gpt-4o (Openai)", ranked[0].Model)
	assert.Equal(t, "2026-08-25", ranked[0].Date)
	require.NotNil(t, ranked[0].TeleQnA)
	assert.Equal(t, 80.0, ranked[0].TeleQnA.Value)
}

func TestLeaderboardCommandPushRequiresToken(t *testing.T) {
	// Keep the token resolution away from the developer's real environment
	// and settings file so this test can never reach the hub.
	t.Setenv(config.TokenEnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	recordsPath := writeTestFile(t, t.TempDir(), "records.json", boardRecords)

	cmd := newLeaderboardCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"--records", recordsPath, "--push"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hub token")
}
