package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-telco/telbench/internal/models"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const passingRecords = `[
  {
    "model": "gpt-4o (Openai)",
    "teleqna": [74.2, 1.0, 500],
    "telelogs": [48.0, 2.1, 100],
    "telemath": [52.5, 1.9, 200],
    "3gpp_tsg": [61.0, 1.4, 300],
    "date": "2026-03-01"
  }
]`

// trajectoryJSON builds a structured runner log for one task with one
// evaluated sample.
func trajectoryJSON(task, sampleID string) string {
	return fmt.Sprintf(`{
  "status": "success",
  "eval": {
    "model": "openai/gpt-4o",
    "task": %q,
    "dataset": {"samples": 1, "sample_ids": [%q]}
  },
  "results": {
    "scores": [
      {"name": "choice", "metrics": {"accuracy": {"value": 0.742}, "stderr": {"value": 0.01}}}
    ]
  }
}`, task, sampleID)
}

const countsCSV = `benchmark,count
teleqna,1
telelogs,1
telemath,1
3gpp_tsg,1
`

func TestValidateCommandPasses(t *testing.T) {
	tmpDir := t.TempDir()

	paths := []string{
		writeTestFile(t, tmpDir, "records.json", passingRecords),
		writeTestFile(t, tmpDir, "teleqna.json", trajectoryJSON("otb_teleqna", "q1")),
		writeTestFile(t, tmpDir, "telelogs.json", trajectoryJSON("otb_telelogs", "l1")),
		writeTestFile(t, tmpDir, "telemath.json", trajectoryJSON("otb_telemath", "m1")),
		writeTestFile(t, tmpDir, "3gpp.json", trajectoryJSON("otb_3gpp_tsg", "g1")),
	}
	countsPath := writeTestFile(t, tmpDir, "counts.csv", countsCSV)
	reportPath := filepath.Join(tmpDir, "report.json")

	cmd := newValidateCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs(append(paths, "--counts-file", countsPath, "--report", reportPath))

	err := cmd.Execute()
	require.NoError(t, err)

	result := output.String()
	assert.Contains(t, result, "SUBMISSION CHECKS")
	assert.Contains(t, result, "records_schema")
	assert.Contains(t, result, "sample_count_valid")
	assert.Contains(t, result, "Sample Counts")
	assert.Contains(t, result, "✅ Submission passed all checks.")
	assert.Contains(t, result, reportPath)

	// The artifact is the machine-readable source of truth for CI.
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report models.ValidationReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.True(t, report.Passed)
	assert.True(t, report.Checks[models.CheckSampleCountValid])
	assert.Empty(t, report.Errors)
}

func TestValidateCommandFailsOnBadProvider(t *testing.T) {
	tmpDir := t.TempDir()

	badRecords := `[
  {
    "model": "gpt-4o (Foo)",
    "teleqna": [74.2, 1.0, 500],
    "telelogs": [48.0, 2.1, 100],
    "telemath": [52.5, 1.9, 200],
    "3gpp_tsg": [61.0, 1.4, 300],
    "date": "2026-03-01"
  }
]`
	recordsPath := writeTestFile(t, tmpDir, "records.json", badRecords)
	trajPath := writeTestFile(t, tmpDir, "teleqna.json", trajectoryJSON("otb_teleqna", "q1"))
	countsPath := writeTestFile(t, tmpDir, "counts.csv", "benchmark,count\nteleqna,1\n")
	reportPath := filepath.Join(tmpDir, "report.json")

	cmd := newValidateCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{recordsPath, trajPath, "--counts-file", countsPath, "--report", reportPath})

	err := cmd.Execute()
	require.Error(t, err)

	var validationErr *ValidationFailedError
	assert.True(t, errors.As(err, &validationErr), "expected a ValidationFailedError, got %T", err)
	assert.Contains(t, output.String(), "❌ Submission failed validation.")
	assert.Contains(t, output.String(), "unrecognized provider")

	// The report artifact is written even when validation fails.
	data, readErr := os.ReadFile(reportPath)
	require.NoError(t, readErr)
	var report models.ValidationReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.False(t, report.Passed)
	assert.False(t, report.Checks[models.CheckProviderRecognized])
}

func TestValidateCommandTrajectoryError(t *testing.T) {
	tmpDir := t.TempDir()

	failed := `{
  "status": "error",
  "error": "model refused to answer",
  "eval": {
    "model": "openai/gpt-4o",
    "task": "otb_teleqna",
    "dataset": {"samples": 1, "sample_ids": ["q1"]}
  },
  "results": {"scores": []}
}`
	recordsPath := writeTestFile(t, tmpDir, "records.json", passingRecords)
	trajPath := writeTestFile(t, tmpDir, "failed.json", failed)
	countsPath := writeTestFile(t, tmpDir, "counts.csv", "benchmark,count\nteleqna,1\n")
	reportPath := filepath.Join(tmpDir, "report.json")

	cmd := newValidateCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{recordsPath, trajPath, "--counts-file", countsPath, "--report", reportPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, output.String(), "model refused to answer")
}

func TestValidateCommandWritesJUnit(t *testing.T) {
	tmpDir := t.TempDir()

	recordsPath := writeTestFile(t, tmpDir, "records.json", passingRecords)
	trajPath := writeTestFile(t, tmpDir, "teleqna.json", trajectoryJSON("otb_teleqna", "q1"))
	countsPath := writeTestFile(t, tmpDir, "counts.csv", "benchmark,count\nteleqna,1\n")
	reportPath := filepath.Join(tmpDir, "report.json")
	junitPath := filepath.Join(tmpDir, "report.xml")

	cmd := newValidateCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{recordsPath, trajPath,
		"--counts-file", countsPath, "--report", reportPath, "--junit", junitPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, output.String(), "JUnit report written to: "+junitPath)

	data, err := os.ReadFile(junitPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<testsuites")
	assert.Contains(t, string(data), models.CheckRecordsSchema)
}

func TestValidateCommandMissingCountsFile(t *testing.T) {
	cmd := newValidateCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"whatever.json", "--counts-file", filepath.Join(t.TempDir(), "missing.csv")})

	err := cmd.Execute()
	require.Error(t, err)

	var validationErr *ValidationFailedError
	assert.False(t, errors.As(err, &validationErr), "a missing counts file is a runtime error, not a validation verdict")
	assert.Contains(t, err.Error(), "loading counts file")
}
