package wizard

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-telco/telbench/internal/config"
)

func newTestWizard(current *config.Settings, validate TokenValidator) *SettingsWizard {
	return NewSettingsWizard(strings.NewReader(""), &bytes.Buffer{}, current, validate)
}

func TestRun_CollectsSettings(t *testing.T) {
	current := &config.Settings{
		APIKeys: map[string]string{"MISTRAL_API_KEY": "sk-old"},
	}
	w := newTestWizard(current, nil)

	calls := 0
	w.runForm = func(*huh.Form) error {
		calls++
		if calls == 1 {
			w.token = "hub_tok_1"
			w.defaultModel = "openai/gpt-4o"
			w.providers = []string{"Openai", "Mistral"}
			return nil
		}
		*w.keys["Openai"] = "sk-open"
		*w.keys["Mistral"] = "   " // blank keeps the saved key
		return nil
	}

	settings, err := w.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	assert.Equal(t, "hub_tok_1", settings.HubToken)
	assert.Equal(t, "openai/gpt-4o", settings.DefaultModel)
	assert.Equal(t, map[string]string{
		"OPENAI_API_KEY":  "sk-open",
		"MISTRAL_API_KEY": "sk-old",
	}, settings.APIKeys)
}

func TestRun_SkipsKeysFormWithoutProviders(t *testing.T) {
	current := &config.Settings{HubToken: "saved-token"}
	w := newTestWizard(current, nil)

	calls := 0
	w.runForm = func(*huh.Form) error {
		calls++
		return nil
	}

	settings, err := w.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Blank token keeps the saved one.
	assert.Equal(t, "saved-token", settings.HubToken)
	assert.Nil(t, settings.APIKeys)
}

func TestRun_FormErrorPropagates(t *testing.T) {
	w := newTestWizard(nil, nil)
	w.runForm = func(*huh.Form) error { return errors.New("user aborted") }

	_, err := w.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings wizard failed")
	assert.Contains(t, err.Error(), "user aborted")
}

func TestCheckToken_NoValidatorAcceptsAnything(t *testing.T) {
	w := newTestWizard(nil, nil)

	assert.NoError(t, w.checkToken("anything"))
	assert.Empty(t, w.Account())
}

func TestCheckToken_ValidatorAccepts(t *testing.T) {
	validate := func(token string) (string, error) {
		assert.Equal(t, "hub_tok_1", token)
		return "alice", nil
	}
	w := newTestWizard(nil, validate)

	require.NoError(t, w.checkToken(" hub_tok_1 "))
	assert.Equal(t, "alice", w.Account())
}

func TestCheckToken_ValidatorRejects(t *testing.T) {
	validate := func(string) (string, error) {
		return "", errors.New("401 unauthorized")
	}
	w := newTestWizard(nil, validate)

	err := w.checkToken("bad-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token rejected")
	assert.Contains(t, err.Error(), "401 unauthorized")
}

func TestCheckToken_BlankSkipsValidation(t *testing.T) {
	called := false
	validate := func(string) (string, error) {
		called = true
		return "", errors.New("should not run")
	}
	w := newTestWizard(nil, validate)

	assert.NoError(t, w.checkToken("   "))
	assert.False(t, called)
}

func TestCredentialsForm_PreselectsProvidersWithKeys(t *testing.T) {
	current := &config.Settings{
		APIKeys: map[string]string{"OPENAI_API_KEY": "sk-open"},
	}
	w := newTestWizard(current, nil)

	// Building the form must not panic and must carry the saved default
	// model into the input value.
	w.defaultModel = "mistral/mistral-large"
	form := w.credentialsForm()
	require.NotNil(t, form)
}

func TestKeysForm_OneFieldPerProvider(t *testing.T) {
	w := newTestWizard(nil, nil)
	w.providers = []string{"Openai", "Groq"}
	w.keys = map[string]*string{
		"Openai": new(string),
		"Groq":   new(string),
	}

	form := w.keysForm()
	require.NotNil(t, form)
}
