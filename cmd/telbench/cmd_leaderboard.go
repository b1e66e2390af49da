package main

import (
	"errors"
	"fmt"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/dataset"
	"github.com/open-telco/telbench/internal/hub"
	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/scoring"
	"github.com/open-telco/telbench/internal/submission"
	"github.com/spf13/cobra"
)

func newLeaderboardCommand() *cobra.Command {
	var (
		recordsPath string
		hubURL      string
		hubToken    string
		mergePath   string
		push        bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the ranked leaderboard",
		Long: `Show the leaderboard ranked by Telco Capability Index.

Records come from the data hub by default; --records ranks a local file
instead. --merge folds a submission's records into the board before ranking
(replacing rows with the same model string), and --push uploads the merged
board back to the hub. Pushing needs a hub token from --token, the
TELBENCH_HUB_TOKEN environment variable, or saved settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tci := scoring.DefaultTCIConfig()
			if err := tci.Validate(); err != nil {
				return fmt.Errorf("TCI calibration table: %w", err)
			}

			proj, err := config.Load(".")
			if err != nil {
				return err
			}
			if hubURL == "" {
				hubURL = proj.Hub.BaseURL
			}
			token := config.ResolveToken(hubToken, loadUserSettings())
			client := hub.NewClient(hubURL, &hub.ClientOptions{Token: token})

			var entries []models.LeaderboardEntry
			if recordsPath != "" {
				entries, err = dataset.LoadRecords(recordsPath)
			} else {
				entries, err = client.Leaderboard(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("loading leaderboard: %w", err)
			}

			if mergePath != "" {
				incoming, err := dataset.LoadRecords(mergePath)
				if err != nil {
					return fmt.Errorf("loading merge records: %w", err)
				}
				entries = submission.Merge(entries, incoming...)
			}

			w := cmd.OutOrStdout()
			ranked := tci.Rank(entries)
			if jsonOutput {
				if err := writeJSONOutput(w, ranked); err != nil {
					return err
				}
			} else {
				displayLeaderboard(w, ranked)
			}

			if push {
				if token == "" {
					return errors.New("pushing records requires a hub token (--token, $TELBENCH_HUB_TOKEN, or telbench settings)")
				}
				if err := client.PushRecords(cmd.Context(), entries); err != nil {
					return fmt.Errorf("pushing records: %w", err)
				}
				fmt.Fprintf(w, "Pushed %d record(s) to the hub.\n", len(entries)) //nolint:errcheck
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recordsPath, "records", "", "Rank a local records file instead of fetching from the hub")
	cmd.Flags().StringVar(&hubURL, "hub", "", "Data hub base URL (default: the public hub)")
	cmd.Flags().StringVar(&hubToken, "token", "", "Hub access token (default: $TELBENCH_HUB_TOKEN or saved settings)")
	cmd.Flags().StringVar(&mergePath, "merge", "", "Records file to merge into the board before ranking")
	cmd.Flags().BoolVar(&push, "push", false, "Upload the (merged) records back to the hub")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit ranked entries as JSON instead of a table")

	return cmd
}
