package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/hub"
	"github.com/open-telco/telbench/internal/wizard"
	"github.com/spf13/cobra"
)

func newSettingsCommand() *cobra.Command {
	var (
		show   bool
		hubURL string
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Configure hub credentials and evaluation defaults",
		Long: `Configure hub credentials and evaluation defaults interactively.

The wizard collects the data hub access token (verified against the hub),
provider API keys exported to the evaluation harness, and a default model.
Secrets left blank keep their saved values. Settings are stored per user
with 0600 permissions.

Use --show to print the current settings with secrets masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if show {
				displaySettings(w, settings)
				return nil
			}

			validate := func(token string) (string, error) {
				client := hub.NewClient(hubURL, &hub.ClientOptions{Token: token})
				return client.WhoAmI(cmd.Context())
			}
			wiz := wizard.NewSettingsWizard(cmd.InOrStdin(), cmd.OutOrStdout(), settings, validate)
			updated, err := wiz.Run()
			if err != nil {
				return err
			}
			if err := updated.Save(); err != nil {
				return err
			}

			if account := wiz.Account(); account != "" {
				fmt.Fprintf(w, "Hub token verified for %s.\n", account) //nolint:errcheck
			}
			path, err := config.SettingsPath()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Settings saved to: %s\n", path) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Print current settings with secrets masked")
	cmd.Flags().StringVar(&hubURL, "hub", "", "Data hub base URL used for token verification (default: the public hub)")

	return cmd
}

//nolint:errcheck // fmt.Fprintf to stdout; write errors are not actionable
func displaySettings(w writer, settings *config.Settings) {
	writeSection(w, "⚙️", "Settings", "")
	writeStatus(w, statusIcon(tokenState(settings.HubToken)), fmt.Sprintf("Hub token: %s", maskSecret(settings.HubToken)))

	model := settings.DefaultModel
	if model == "" {
		model = "(not set)"
	}
	writeStatus(w, statusIcon(tokenState(settings.DefaultModel)), fmt.Sprintf("Default model: %s", model))

	if len(settings.APIKeys) == 0 {
		writeStatus(w, statusIcon(""), "API keys: none configured")
		return
	}
	names := make([]string, 0, len(settings.APIKeys))
	for name := range settings.APIKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeStatus(w, statusIcon("ok"), fmt.Sprintf("%s = %s", name, maskSecret(settings.APIKeys[name])))
	}
}

func tokenState(v string) string {
	if v == "" {
		return ""
	}
	return "ok"
}

// maskSecret hides all but the edges of a secret. Short secrets mask
// entirely so the visible characters never reveal most of the value.
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return strings.Repeat("*", 8)
	}
	return s[:4] + strings.Repeat("*", 4) + s[len(s)-4:]
}
