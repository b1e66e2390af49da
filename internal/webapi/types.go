package webapi

// ScoreResponse is one benchmark column within a leaderboard entry. Scores
// and stderr are percentages, matching the stored records.
type ScoreResponse struct {
	Benchmark   string  `json:"benchmark"`
	Score       float64 `json:"score"`
	Stderr      float64 `json:"stderr"`
	SampleCount int     `json:"sampleCount"`
}

// EntryResponse is the API response for a single ranked leaderboard row.
// TCI is null and Rank is 0 when the row has too few benchmark scores for
// a defined index.
type EntryResponse struct {
	Rank     int             `json:"rank"`
	Model    string          `json:"model"`
	Name     string          `json:"name"`
	Provider string          `json:"provider"`
	TCI      *float64        `json:"tci"`
	TCIError *float64        `json:"tciError,omitempty"`
	Scores   []ScoreResponse `json:"scores"`
	Date     string          `json:"date"`
}

// SummaryResponse is the aggregate KPI response for the whole board.
type SummaryResponse struct {
	TotalEntries  int      `json:"totalEntries"`
	RankedEntries int      `json:"rankedEntries"`
	Providers     int      `json:"providers"`
	TopModel      string   `json:"topModel,omitempty"`
	TopTCI        *float64 `json:"topTci,omitempty"`
	AvgTCI        *float64 `json:"avgTci,omitempty"`
	LastUpdated   string   `json:"lastUpdated,omitempty"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
