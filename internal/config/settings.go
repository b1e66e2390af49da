package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TokenEnvVar overrides the stored hub token when set.
const TokenEnvVar = "TELBENCH_HUB_TOKEN"

const (
	settingsDirName  = "telbench"
	settingsFileName = "settings.yaml"
)

// Settings is the user-level configuration stored outside the project,
// holding credentials and personal defaults.
type Settings struct {
	HubToken     string `yaml:"hub_token,omitempty"`
	DefaultModel string `yaml:"default_model,omitempty"`

	// APIKeys maps environment variable names (e.g. OPENAI_API_KEY) to
	// secrets exported to the evaluation harness.
	APIKeys map[string]string `yaml:"api_keys,omitempty"`
}

// SettingsPath returns the per-user settings file location.
func SettingsPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, settingsDirName, settingsFileName), nil
}

// LoadSettings reads the user settings file. A missing file yields empty
// settings with a nil error.
func LoadSettings() (*Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFrom(path)
}

// LoadSettingsFrom reads settings from an explicit path.
func LoadSettingsFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return &s, nil
}

// Save writes the settings to the per-user location.
func (s *Settings) Save() error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	return s.SaveTo(path)
}

// SaveTo writes the settings to an explicit path. The file is created
// with 0600 permissions since it holds secrets.
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Env renders the stored API keys as KEY=VALUE pairs in a stable order,
// suitable for the harness launcher. Empty values are skipped.
func (s *Settings) Env() []string {
	if len(s.APIKeys) == 0 {
		return nil
	}

	names := make([]string, 0, len(s.APIKeys))
	for name := range s.APIKeys {
		names = append(names, name)
	}
	sort.Strings(names)

	env := make([]string, 0, len(names))
	for _, name := range names {
		if s.APIKeys[name] == "" {
			continue
		}
		env = append(env, name+"="+s.APIKeys[name])
	}
	return env
}

// ResolveToken picks the hub token in precedence order: the explicit
// value (a flag), the TELBENCH_HUB_TOKEN environment variable, then the
// stored settings.
func ResolveToken(explicit string, settings *Settings) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv(TokenEnvVar); v != "" {
		return v
	}
	if settings != nil {
		return settings.HubToken
	}
	return ""
}

// ProviderEnvKey maps a leaderboard provider label to the environment
// variable its API key is exported as.
func ProviderEnvKey(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}
