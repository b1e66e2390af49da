package webapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Version is set at build time or defaults to the development version.
var Version = "0.1.0"

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	store Store
}

// NewHandlers creates a new Handlers with the given store.
func NewHandlers(store Store) *Handlers {
	return &Handlers{store: store}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleSummary returns aggregate KPI metrics across the board.
func (h *Handlers) HandleSummary(w http.ResponseWriter, _ *http.Request) {
	summary, err := h.store.Summary()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleLeaderboard returns the ranked board, with an optional provider
// query param filtering rows.
func (h *Handlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	provider := r.URL.Query().Get("provider")

	entries, err := h.store.ListEntries(provider)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleEntry returns a single leaderboard row by model string or bare
// model name.
func (h *Handlers) HandleEntry(w http.ResponseWriter, r *http.Request) {
	model := r.PathValue("model")
	if model == "" {
		// Fallback: extract from URL path for compatibility.
		model = strings.TrimPrefix(r.URL.Path, "/api/leaderboard/")
	}
	if model == "" {
		writeError(w, http.StatusBadRequest, "model is required")
		return
	}

	entry, err := h.store.GetEntry(model)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			writeError(w, http.StatusNotFound, "model not found on the leaderboard")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, store Store) {
	h := NewHandlers(store)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/summary", h.HandleSummary)
	mux.HandleFunc("GET /api/leaderboard", h.HandleLeaderboard)
	mux.HandleFunc("GET /api/leaderboard/{model}", h.HandleEntry)
}

// CORSMiddleware permits cross-origin reads from the listed origins, for a
// board front-end developed against the API on its own dev server. With no
// origins configured the handler is returned unwrapped and the API stays
// same-origin only.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	if len(allowedOrigins) == 0 {
		return next
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowed[origin] {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
