package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/webserver"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var (
		port         int
		records      string
		noBrowser    bool
		allowOrigins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local leaderboard viewer",
		Long: `Serve the local leaderboard viewer.

Starts a read-only HTTP JSON API over a records file on the loopback
interface and opens it in the default browser. Endpoints:

  GET /api/health
  GET /api/summary
  GET /api/leaderboard?provider=...
  GET /api/leaderboard/{model}

The server re-reads the records file only on restart; restart it after
merging new submissions. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := config.Load(".")
			if err != nil {
				return err
			}
			if port == 0 {
				port = proj.Server.Port
			}
			if records == "" {
				records = proj.Paths.Records
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := webserver.New(webserver.Config{
				Port:           port,
				RecordsFile:    records,
				NoBrowser:      noBrowser,
				AllowedOrigins: allowOrigins,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: 3000)")
	cmd.Flags().StringVar(&records, "records", "", "Records file to serve (default: records.json)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the browser")
	cmd.Flags().StringSliceVar(&allowOrigins, "allow-origin", nil, "Origin allowed to read the API cross-origin (repeatable)")

	return cmd
}
