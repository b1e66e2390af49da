// Package schemas holds the embedded JSON Schemas for persisted artifacts.
package schemas

import _ "embed"

// LeaderboardSchemaJSON is the schema for leaderboard records files: an
// array of rows, each with a model string, optional per-benchmark
// [score, stderr, sampleCount] triples, and an ISO date.
//
//go:embed leaderboard.schema.json
var LeaderboardSchemaJSON string
