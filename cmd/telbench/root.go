package main

import (
	"log/slog"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/utils"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telbench",
		Short: "telbench - CLI toolkit for the Open Telco LLM Benchmarks leaderboard",
		Long: `telbench is a command-line toolkit for the Open Telco LLM Benchmarks leaderboard.

It validates leaderboard submissions, estimates how many evaluation epochs a
model needs (Find-K), computes the Telco Capability Index, bundles trajectory
logs for submission, and serves a local leaderboard viewer.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		utils.ConfigureLogging(*debugLogging)
	}

	// Add subcommands
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newFindKCommand())
	cmd.AddCommand(newScoreCommand())
	cmd.AddCommand(newBundleCommand())
	cmd.AddCommand(newLeaderboardCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newSettingsCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// loadUserSettings reads the per-user settings, degrading to empty settings
// with a warning when the file is unreadable. Commands never hard-fail on a
// broken settings file; explicit flags and environment variables still work.
func loadUserSettings() *config.Settings {
	settings, err := config.LoadSettings()
	if err != nil {
		slog.Warn("user settings not loaded", "error", err)
		return &config.Settings{}
	}
	return settings
}
