// Package wizard implements the interactive settings flow: hub token,
// default model, and provider API keys collected through terminal forms.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/open-telco/telbench/internal/config"
	"github.com/open-telco/telbench/internal/models"
)

// TokenValidator checks an entered hub token and returns the account name
// it belongs to. A nil validator accepts any token.
type TokenValidator func(token string) (string, error)

// SettingsWizard collects user settings through a two-phase form: hub
// credentials and provider selection first, then one API key input per
// chosen provider. Blank secret fields keep their saved values.
type SettingsWizard struct {
	in       io.Reader
	out      io.Writer
	current  *config.Settings
	validate TokenValidator

	// runForm is a test hook for replacing form execution in tests.
	runForm func(*huh.Form) error

	token        string
	defaultModel string
	providers    []string
	keys         map[string]*string
	account      string
}

// NewSettingsWizard prepares a wizard over the current settings. Collected
// answers overlay current; validate may be nil to skip token checks.
func NewSettingsWizard(in io.Reader, out io.Writer, current *config.Settings, validate TokenValidator) *SettingsWizard {
	if current == nil {
		current = &config.Settings{}
	}
	return &SettingsWizard{
		in:           in,
		out:          out,
		current:      current,
		validate:     validate,
		runForm:      func(f *huh.Form) error { return f.Run() },
		defaultModel: current.DefaultModel,
	}
}

// Run executes the forms and returns the merged settings.
func (w *SettingsWizard) Run() (*config.Settings, error) {
	if err := w.runForm(w.credentialsForm()); err != nil {
		return nil, fmt.Errorf("settings wizard failed: %w", err)
	}

	if len(w.providers) > 0 {
		w.keys = make(map[string]*string, len(w.providers))
		for _, p := range w.providers {
			w.keys[p] = new(string)
		}
		if err := w.runForm(w.keysForm()); err != nil {
			return nil, fmt.Errorf("settings wizard failed: %w", err)
		}
	}

	return w.assemble(), nil
}

// Account returns the account name reported by the token validator, or ""
// when no token was validated.
func (w *SettingsWizard) Account() string {
	return w.account
}

func (w *SettingsWizard) credentialsForm() *huh.Form {
	providerOpts := make([]huh.Option[string], 0, len(models.RecognizedProviders))
	for _, p := range models.RecognizedProviders {
		_, hasKey := w.current.APIKeys[config.ProviderEnvKey(p)]
		providerOpts = append(providerOpts, huh.NewOption(p, p).Selected(hasKey))
	}

	return w.newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Hub token").
				Description("Dataset hub access token; leave blank to keep the saved one").
				EchoMode(huh.EchoModePassword).
				Value(&w.token).
				Validate(w.checkToken),
			huh.NewInput().
				Title("Default model").
				Description("Model passed to evaluation runs when --model is omitted").
				Placeholder("openai/gpt-4o").
				Value(&w.defaultModel),
			huh.NewMultiSelect[string]().
				Title("Providers").
				Description("Pick the providers you hold API keys for").
				Options(providerOpts...).
				Value(&w.providers),
		),
	)
}

func (w *SettingsWizard) keysForm() *huh.Form {
	fields := make([]huh.Field, 0, len(w.providers))
	for _, p := range w.providers {
		fields = append(fields, huh.NewInput().
			Title(fmt.Sprintf("%s API key", p)).
			Description(fmt.Sprintf("Exported as %s; leave blank to keep the saved one", config.ProviderEnvKey(p))).
			EchoMode(huh.EchoModePassword).
			Value(w.keys[p]))
	}
	return w.newForm(huh.NewGroup(fields...))
}

func (w *SettingsWizard) newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).
		WithInput(w.in).
		WithOutput(w.out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := w.in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}
	return form
}

// checkToken validates a non-blank entered token. Blank means "keep the
// saved token" and is always accepted.
func (w *SettingsWizard) checkToken(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || w.validate == nil {
		return nil
	}
	account, err := w.validate(s)
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}
	w.account = account
	return nil
}

// assemble merges the collected answers over the starting settings.
func (w *SettingsWizard) assemble() *config.Settings {
	out := &config.Settings{
		HubToken:     strings.TrimSpace(w.token),
		DefaultModel: strings.TrimSpace(w.defaultModel),
	}
	if out.HubToken == "" {
		out.HubToken = w.current.HubToken
	}

	keys := make(map[string]string, len(w.current.APIKeys)+len(w.keys))
	for name, v := range w.current.APIKeys {
		keys[name] = v
	}
	for p, v := range w.keys {
		if key := strings.TrimSpace(*v); key != "" {
			keys[config.ProviderEnvKey(p)] = key
		}
	}
	if len(keys) > 0 {
		out.APIKeys = keys
	}
	return out
}
