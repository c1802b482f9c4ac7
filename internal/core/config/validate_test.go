package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/runway/internal/core/genai"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	names := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		names[i] = fe.Field
	}
	return names
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.GenAI.Prompts = map[string]string{
		"lead-score": "Score {{ .Name }} at {{ .Company | default \"unknown\" }}",
	}

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_Supabase(t *testing.T) {
	cfg := validConfig(t)
	cfg.Store.Backend = BackendSupabase
	cfg.Store.Supabase.KeyEnv = "RUNWAY_TEST_EMPTY_KEY"
	t.Setenv("RUNWAY_TEST_EMPTY_KEY", "")

	err := cfg.ValidateDeep("")
	assert.ElementsMatch(t, []string{"store.supabase.url", "store.supabase.key"}, fieldNames(t, err))

	cfg.Store.Supabase.URL = "ftp://abc"
	cfg.Store.Supabase.Key = "k"
	err = cfg.ValidateDeep("")
	assert.Equal(t, []string{"store.supabase.url"}, fieldNames(t, err))

	cfg.Store.Supabase.URL = "https://abc.supabase.co"
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_EdgeNeedsSupabase(t *testing.T) {
	cfg := validConfig(t)
	cfg.GenAI.Backend = GenAIEdge
	cfg.Store.Supabase.Key = "k"

	err := cfg.ValidateDeep("")
	assert.Equal(t, []string{"store.supabase.url"}, fieldNames(t, err))
}

func TestValidateDeep_OpenAIKey(t *testing.T) {
	cfg := validConfig(t)
	cfg.GenAI.Backend = GenAIOpenAI
	cfg.GenAI.APIKeyEnv = "RUNWAY_TEST_OPENAI_KEY"
	t.Setenv("RUNWAY_TEST_OPENAI_KEY", "")

	err := cfg.ValidateDeep("")
	assert.Equal(t, []string{"genai.api_key_env"}, fieldNames(t, err))

	t.Setenv("RUNWAY_TEST_OPENAI_KEY", "sk-test")
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_Prompts(t *testing.T) {
	cfg := validConfig(t)
	cfg.GenAI.Prompts = map[string]string{
		"email":    "Hi {{ .Recipient",
		"poem":     "roses",
		"pitch":    "x",
		"insights": "{{ .Recipient }}",
	}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 4)

	byField := map[string]string{}
	for _, fe := range fieldErrs {
		byField[fe.Field] = fe.Err.Error()
	}
	assert.Contains(t, byField[`genai.prompts["email"]`], "template error")
	assert.Contains(t, byField[`genai.prompts["insights"]`], "template error")
	assert.Contains(t, byField[`genai.prompts["poem"]`], "unknown action")
	assert.Contains(t, byField[`genai.prompts["pitch"]`], "unknown action")
}

func TestValidateDeep_Theme(t *testing.T) {
	cfg := validConfig(t)
	cfg.TUI.Theme = "neon-nightmare"

	err := cfg.ValidateDeep("")
	assert.Equal(t, []string{"tui.theme"}, fieldNames(t, err))
}

func TestValidateDeep_FileAccess(t *testing.T) {
	cfg := validConfig(t)

	file := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.DataDir = file

	dirAsConfig := t.TempDir()

	err := cfg.ValidateDeep(dirAsConfig)
	assert.ElementsMatch(t, []string{"config_file", "data_dir"}, fieldNames(t, err))
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	assert.Empty(t, cfg.Warnings())

	cfg.Store.Backend = BackendMemory
	cfg.GenAI.Prompts = map[string]string{"email": "x"}
	cfg.GenAI.Temperature = 1.5

	var items []string
	for _, w := range cfg.Warnings() {
		items = append(items, w.Item)
	}
	assert.Equal(t, []string{"backend", "prompts", "temperature"}, items)
}

func TestSampleRequest_valid(t *testing.T) {
	for _, action := range genai.Actions() {
		t.Run(string(action), func(t *testing.T) {
			req := SampleRequest(action)
			assert.Equal(t, action, req.Action())
			assert.NoError(t, genai.Validate(req))
		})
	}
}
