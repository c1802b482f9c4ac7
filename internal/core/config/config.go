// Package config handles configuration loading and validation for runway.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/runway/internal/core/optimistic"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

// Generation backends.
const (
	GenAIOffline = "offline"
	GenAIEdge    = "edge"
	GenAIOpenAI  = "openai"
)

var (
	storeBackends = []string{BackendMemory, BackendFile, BackendSQLite, BackendSupabase}
	genaiBackends = []string{GenAIOffline, GenAIEdge, GenAIOpenAI}
)

// Config holds the application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	GenAI      GenAIConfig      `yaml:"genai"`
	TUI        TUIConfig        `yaml:"tui"`
	Optimistic OptimisticConfig `yaml:"optimistic"`
	DataDir    string           `yaml:"-"` // set by caller, not from config file
}

// StoreConfig selects where CRM and metrics data live.
type StoreConfig struct {
	Backend  string         `yaml:"backend"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Supabase SupabaseConfig `yaml:"supabase"`
}

// SQLiteConfig holds connection pool settings for the sqlite backend.
type SQLiteConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// SupabaseConfig configures the hosted backend, used for storage and for
// Edge Function generation.
type SupabaseConfig struct {
	URL       string        `yaml:"url"`
	Key       string        `yaml:"key"`
	KeyEnv    string        `yaml:"key_env"` // read the key from this variable when key is empty
	Schema    string        `yaml:"schema"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int           `yaml:"burst"`
	Retries   int           `yaml:"retries"`
}

// GenAIConfig selects the text generation backend.
type GenAIConfig struct {
	Backend     string            `yaml:"backend"`
	Function    string            `yaml:"function"` // edge function name
	Model       string            `yaml:"model"`
	BaseURL     string            `yaml:"base_url"`
	APIKeyEnv   string            `yaml:"api_key_env"`
	Temperature float32           `yaml:"temperature"`
	Prompts     map[string]string `yaml:"prompts"` // action -> prompt template override
}

// TUIConfig holds interactive UI settings.
type TUIConfig struct {
	Theme           string        `yaml:"theme"`
	TypewriterDelay time.Duration `yaml:"typewriter_delay"`
	ToastTTL        time.Duration `yaml:"toast_ttl"`
	ToastMax        int           `yaml:"toast_max"`
	Watch           *bool         `yaml:"watch"` // reload on external edits (file backend)
}

// WatchEnabled reports whether external edits should trigger a reload.
func (t TUIConfig) WatchEnabled() bool {
	return t.Watch == nil || *t.Watch
}

// OptimisticConfig tunes the optimistic mutation controllers.
type OptimisticConfig struct {
	Policy string `yaml:"policy"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendSQLite,
			SQLite: SQLiteConfig{
				MaxOpenConns: 10,
				MaxIdleConns: 5,
				BusyTimeout:  5000,
			},
			Supabase: SupabaseConfig{
				KeyEnv:    "SUPABASE_KEY",
				Timeout:   10 * time.Second,
				RateLimit: 10,
				Burst:     5,
				Retries:   2,
			},
		},
		GenAI: GenAIConfig{
			Backend:   GenAIOffline,
			Function:  "generate",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		TUI: TUIConfig{
			Theme:           "tokyo-night",
			TypewriterDelay: 18 * time.Millisecond,
			ToastTTL:        5 * time.Second,
			ToastMax:        5,
		},
		Optimistic: OptimisticConfig{
			Policy: optimistic.PolicyConcurrent.String(),
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	d := DefaultConfig()

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = d.Store.Backend
	}
	if c.Store.SQLite.MaxOpenConns == 0 {
		c.Store.SQLite.MaxOpenConns = d.Store.SQLite.MaxOpenConns
	}
	if c.Store.SQLite.MaxIdleConns == 0 {
		c.Store.SQLite.MaxIdleConns = d.Store.SQLite.MaxIdleConns
	}
	if c.Store.SQLite.BusyTimeout == 0 {
		c.Store.SQLite.BusyTimeout = d.Store.SQLite.BusyTimeout
	}
	if c.Store.Supabase.KeyEnv == "" {
		c.Store.Supabase.KeyEnv = d.Store.Supabase.KeyEnv
	}
	if c.Store.Supabase.Timeout == 0 {
		c.Store.Supabase.Timeout = d.Store.Supabase.Timeout
	}
	if c.Store.Supabase.Burst == 0 {
		c.Store.Supabase.Burst = d.Store.Supabase.Burst
	}

	c.GenAI.Backend = strings.ToLower(strings.TrimSpace(c.GenAI.Backend))
	if c.GenAI.Backend == "" {
		c.GenAI.Backend = d.GenAI.Backend
	}
	if c.GenAI.Function == "" {
		c.GenAI.Function = d.GenAI.Function
	}
	if c.GenAI.Model == "" {
		c.GenAI.Model = d.GenAI.Model
	}
	if c.GenAI.APIKeyEnv == "" {
		c.GenAI.APIKeyEnv = d.GenAI.APIKeyEnv
	}

	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.TypewriterDelay == 0 {
		c.TUI.TypewriterDelay = d.TUI.TypewriterDelay
	}
	if c.TUI.ToastTTL == 0 {
		c.TUI.ToastTTL = d.TUI.ToastTTL
	}
	if c.TUI.ToastMax == 0 {
		c.TUI.ToastMax = d.TUI.ToastMax
	}

	if c.Optimistic.Policy == "" {
		c.Optimistic.Policy = d.Optimistic.Policy
	}
}

// Validate checks that the configuration is structurally valid. It does no
// I/O; see ValidateDeep.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if !slices.Contains(storeBackends, c.Store.Backend) {
		return fmt.Errorf("store.backend %q must be one of: %s", c.Store.Backend, strings.Join(storeBackends, ", "))
	}
	if c.Store.SQLite.MaxOpenConns < 1 {
		return fmt.Errorf("store.sqlite.max_open_conns must be at least 1")
	}
	if c.Store.SQLite.MaxIdleConns < 0 {
		return fmt.Errorf("store.sqlite.max_idle_conns cannot be negative")
	}
	if c.Store.SQLite.BusyTimeout < 0 {
		return fmt.Errorf("store.sqlite.busy_timeout cannot be negative")
	}
	if c.Store.Supabase.Timeout < 0 {
		return fmt.Errorf("store.supabase.timeout cannot be negative")
	}
	if c.Store.Supabase.RateLimit < 0 {
		return fmt.Errorf("store.supabase.rate_limit cannot be negative")
	}
	if c.Store.Supabase.Retries < 0 {
		return fmt.Errorf("store.supabase.retries cannot be negative")
	}

	if !slices.Contains(genaiBackends, c.GenAI.Backend) {
		return fmt.Errorf("genai.backend %q must be one of: %s", c.GenAI.Backend, strings.Join(genaiBackends, ", "))
	}
	if c.GenAI.Temperature < 0 || c.GenAI.Temperature > 2 {
		return fmt.Errorf("genai.temperature must be between 0 and 2")
	}

	if c.TUI.TypewriterDelay < 0 {
		return fmt.Errorf("tui.typewriter_delay cannot be negative")
	}
	if c.TUI.ToastTTL < time.Second {
		return fmt.Errorf("tui.toast_ttl must be at least 1s")
	}
	if c.TUI.ToastMax < 1 {
		return fmt.Errorf("tui.toast_max must be at least 1")
	}

	if _, err := optimistic.ParsePolicy(c.Optimistic.Policy); err != nil {
		return fmt.Errorf("optimistic.policy: %w", err)
	}

	return nil
}

// SupabaseKey returns the configured key, falling back to the key_env
// variable.
func (c *Config) SupabaseKey() string {
	if c.Store.Supabase.Key != "" {
		return c.Store.Supabase.Key
	}
	return os.Getenv(c.Store.Supabase.KeyEnv)
}

// OpenAIKey returns the API key from the configured environment variable.
func (c *Config) OpenAIKey() string {
	return os.Getenv(c.GenAI.APIKeyEnv)
}

// Policy returns the parsed optimistic policy. Validate has already checked
// it.
func (c *Config) Policy() optimistic.Policy {
	p, _ := optimistic.ParsePolicy(c.Optimistic.Policy)
	return p
}

// LogFile is where the TUI writes its log.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "runway.log")
}
