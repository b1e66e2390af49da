package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/statistics"
)

func TestConsistencyCounts(t *testing.T) {
	tests := []struct {
		name          string
		rec           statistics.ConsistencyRecord
		expectedTotal int
		expectedMixed int
	}{
		{
			name:          "empty record",
			rec:           statistics.ConsistencyRecord{},
			expectedTotal: 0,
			expectedMixed: 0,
		},
		{
			name: "all stable",
			rec: statistics.ConsistencyRecord{
				"task1": {true, true, true},
				"task2": {false, false},
			},
			expectedTotal: 2,
			expectedMixed: 0,
		},
		{
			name: "one mixed",
			rec: statistics.ConsistencyRecord{
				"task1": {true, true},
				"task2": {true, false, true},
			},
			expectedTotal: 2,
			expectedMixed: 1,
		},
		{
			name: "empty observation lists are skipped",
			rec: statistics.ConsistencyRecord{
				"task1": {},
				"task2": {true},
			},
			expectedTotal: 1,
			expectedMixed: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, mixed := consistencyCounts(tt.rec)
			assert.Equal(t, tt.expectedTotal, total)
			assert.Equal(t, tt.expectedMixed, mixed)
		})
	}
}

func TestDisplayFindKResultSuccess(t *testing.T) {
	res := models.FindKResult{
		Model:                "openai/gpt-4o",
		OptimalK:             2,
		VarianceReductionPct: 62.5,
		TaskConsistency: statistics.ConsistencyRecord{
			"otb_teleqna":  {true, true, true},
			"otb_telemath": {true, false, true},
		},
		ObservedVariance: 0.25,
	}

	var output bytes.Buffer
	displayFindKResult(&output, res, 50.0)

	result := output.String()
	assert.Contains(t, result, "Find-K: openai/gpt-4o")
	assert.Contains(t, result, "Recommended epochs: K=2")
	assert.Contains(t, result, "Expected variance reduction: 62.5% (target 50.0%)")
	assert.Contains(t, result, "Task consistency: 1/2 tasks stable (inconsistency 0.25)")
	assert.Contains(t, result, "Accuracy 95% CI:")
}

func TestDisplayFindKResultFallback(t *testing.T) {
	res := models.FindKResult{
		Model:            "openai/gpt-4o",
		OptimalK:         5,
		ObservedVariance: 1.0,
		Err:              "harness exited with code 1",
	}

	var output bytes.Buffer
	displayFindKResult(&output, res, 50.0)

	result := output.String()
	assert.Contains(t, result, "Preflight failed: harness exited with code 1")
	assert.Contains(t, result, "Conservative recommendation: K=5")
	assert.NotContains(t, result, "Recommended epochs")
}

func TestDisplayFindKResultNoObservations(t *testing.T) {
	res := models.FindKResult{
		Model:                "openai/gpt-4o",
		OptimalK:             1,
		VarianceReductionPct: 80.0,
	}

	var output bytes.Buffer
	displayFindKResult(&output, res, 50.0)

	assert.Contains(t, output.String(), "No per-task observations recovered from the run")
}

func TestSaveFindKResults(t *testing.T) {
	results := []models.FindKResult{
		{
			Model:                "openai/gpt-4o",
			OptimalK:             2,
			VarianceReductionPct: 62.5,
			TaskConsistency:      statistics.ConsistencyRecord{"otb_teleqna": {true, true}},
			ObservedVariance:     0.0,
		},
		{
			Model:    "google/gemini-pro",
			OptimalK: 5,
			Err:      "timeout",
		},
	}

	path := filepath.Join(t.TempDir(), "findk.json")
	require.NoError(t, saveFindKResults(results, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded []models.FindKResult
	require.NoError(t, json.Unmarshal(data, &loaded))
	require.Len(t, loaded, 2)
	assert.Equal(t, 2, loaded[0].OptimalK)
	assert.False(t, loaded[0].Failed())
	assert.True(t, loaded[1].Failed())
}

func TestFindKCommandRequiresModel(t *testing.T) {
	cmd := newFindKCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
}
