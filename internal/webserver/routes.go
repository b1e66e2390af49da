package webserver

import (
	"encoding/json"
	"net/http"

	"github.com/open-telco/telbench/internal/webapi"
)

// registerRoutes sets up the API routes on the given mux.
func registerRoutes(mux *http.ServeMux, cfg Config) {
	store := webapi.NewFileStore(cfg.RecordsFile)
	webapi.RegisterRoutes(mux, store)

	mux.HandleFunc("GET /{$}", handleIndex)
}

// handleIndex lists the available endpoints so the root URL is not a 404.
func handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"service": "telbench leaderboard",
		"endpoints": []string{
			"/api/health",
			"/api/leaderboard",
			"/api/leaderboard/{model}",
			"/api/summary",
		},
	})
}
