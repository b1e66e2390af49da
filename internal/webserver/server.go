// Package webserver runs the local leaderboard viewer: an HTTP server
// exposing the read-only JSON API over a records file.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/webapi"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	RecordsFile string
	NoBrowser   bool

	// AllowedOrigins lists origins permitted to read the API cross-origin
	// (a board front-end on its own dev server). Empty means same-origin
	// only.
	AllowedOrigins []string

	Logger *slog.Logger
}

// Server wraps the HTTP server with configuration.
type Server struct {
	cfg    Config
	srv    *http.Server
	logger *slog.Logger
}

// New creates the viewer server. Zero-value config fields fall back to the
// project defaults, and the listener binds to loopback only.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = config.DefaultServerPort
	}
	if cfg.RecordsFile == "" {
		cfg.RecordsFile = config.DefaultRecordsFile
	}

	mux := http.NewServeMux()
	registerRoutes(mux, cfg)

	return &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		srv: &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:           webapi.CORSMiddleware(mux, cfg.AllowedOrigins...),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to five seconds. Unless NoBrowser is set, the local
// browser is pointed at the viewer once the listener is up.
func (s *Server) ListenAndServe(ctx context.Context) error {
	url := fmt.Sprintf("http://localhost:%d", s.cfg.Port)
	s.logger.Info("leaderboard viewer starting", "address", s.srv.Addr, "url", url)
	fmt.Printf("telbench leaderboard: %s\n", url)

	if !s.cfg.NoBrowser {
		go func() {
			// Give the listener a moment to come up first.
			time.Sleep(500 * time.Millisecond)
			if err := openBrowser(url); err != nil {
				s.logger.Debug("failed to open browser", "error", err)
			}
		}()
	}

	errc := make(chan error, 1)
	go func() { errc <- s.srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down leaderboard viewer")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("viewer shutdown: %w", err)
		}
		<-errc
		return nil
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("viewer: %w", err)
		}
		return nil
	}
}

// Handler returns the underlying http.Handler (useful for testing).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// openBrowser launches the platform's browser command for url.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
