package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/runway/internal/core/genai"
	"github.com/colonyops/runway/internal/core/styles"
	"github.com/colonyops/runway/internal/core/validate"
	"github.com/colonyops/runway/pkg/tmpl"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// backend credentials, URL syntax, prompt templates and file accessibility. The
// configPath argument specifies the config file location to validate (empty
// string skips config file check). This calls Validate() first for basic
// structural validation, then adds environment and I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateSupabase(),
		c.validateGenAI(),
		c.validatePrompts(),
		criterio.Run("tui.theme", c.TUI.Theme, knownTheme),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Store.Backend == BackendMemory {
		warnings = append(warnings, ValidationWarning{
			Category: "Store",
			Item:     "backend",
			Message:  "memory backend does not persist changes between runs",
		})
	}

	if c.Store.Backend == BackendSupabase && c.Store.Supabase.RateLimit == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Store",
			Item:     "supabase.rate_limit",
			Message:  "no client-side rate limit; bulk operations may hit server limits",
		})
	}

	if c.GenAI.Backend != GenAIOpenAI && len(c.GenAI.Prompts) > 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "GenAI",
			Item:     "prompts",
			Message:  fmt.Sprintf("prompt overrides are only used by the openai backend, not %q", c.GenAI.Backend),
		})
	}

	if c.GenAI.Temperature > 1.2 {
		warnings = append(warnings, ValidationWarning{
			Category: "GenAI",
			Item:     "temperature",
			Message:  "high temperatures make lead scores unstable",
		})
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// usesSupabase reports whether any configured feature talks to Supabase.
func (c *Config) usesSupabase() bool {
	return c.Store.Backend == BackendSupabase || c.GenAI.Backend == GenAIEdge
}

func (c *Config) validateSupabase() error {
	var errs criterio.FieldErrorsBuilder

	if err := validate.HTTPURL(c.Store.Supabase.URL); err != nil {
		errs = errs.Append("store.supabase.url", err)
	}

	if !c.usesSupabase() {
		return errs.ToError()
	}

	if c.Store.Supabase.URL == "" {
		errs = errs.Append("store.supabase.url", fmt.Errorf("required by store.backend=%s genai.backend=%s", c.Store.Backend, c.GenAI.Backend))
	}
	if c.SupabaseKey() == "" {
		errs = errs.Append("store.supabase.key", fmt.Errorf("not set and $%s is empty", c.Store.Supabase.KeyEnv))
	}
	return errs.ToError()
}

func (c *Config) validateGenAI() error {
	var errs criterio.FieldErrorsBuilder

	if err := validate.HTTPURL(c.GenAI.BaseURL); err != nil {
		errs = errs.Append("genai.base_url", err)
	}
	if c.GenAI.Backend == GenAIOpenAI && c.OpenAIKey() == "" {
		errs = errs.Append("genai.api_key_env", fmt.Errorf("$%s is empty", c.GenAI.APIKeyEnv))
	}
	if c.GenAI.Backend == GenAIEdge && strings.ContainsAny(c.GenAI.Function, "/?# ") {
		errs = errs.Append("genai.function", fmt.Errorf("invalid function name %q", c.GenAI.Function))
	}
	return errs.ToError()
}

// validatePrompts checks that every override names a known action and renders
// against a sample request of that action.
func (c *Config) validatePrompts() error {
	var errs criterio.FieldErrorsBuilder

	names := make([]string, 0, len(c.GenAI.Prompts))
	for name := range c.GenAI.Prompts {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		field := fmt.Sprintf("genai.prompts[%q]", name)
		action, err := genai.ParseAction(name)
		if err != nil {
			errs = errs.Append(field, err)
			continue
		}
		if err := validateTemplate(c.GenAI.Prompts[name], SampleRequest(action)); err != nil {
			errs = errs.Append(field, fmt.Errorf("template error: %w", err))
		}
	}
	return errs.ToError()
}

// SampleRequest returns a filled-in request for action, used to check that
// prompt templates only reference fields the request has.
func SampleRequest(action genai.Action) genai.Request {
	switch action {
	case genai.ActionPitchDeck:
		return genai.PitchDeckRequest{Company: "Acme", Problem: "p", Solution: "s", Market: "m", Traction: "t", Slides: 10}
	case genai.ActionEmail:
		return genai.EmailRequest{Recipient: "Ana", Company: "Acme", Purpose: "p", Tone: "friendly", Context: "c"}
	case genai.ActionMarketSizing:
		return genai.MarketSizingRequest{Product: "p", Industry: "i", Region: "r", Segment: "s"}
	case genai.ActionLeadScore:
		return genai.LeadScoreRequest{Name: "Ana", Company: "Acme", Email: "ana@example.com", Title: "CEO", Value: 1, Notes: "n"}
	default:
		return genai.InsightsRequest{Summary: "s", Focus: "f", Max: 5}
	}
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

// validateTemplate checks if a template string is valid.
func validateTemplate(tmplStr string, data any) error {
	_, err := tmpl.Render(tmplStr, data)
	return err
}
