package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/runway/internal/app"
	"github.com/colonyops/runway/internal/core/config"
)

type Flags struct {
	LogLevel    string
	LogFile     string
	ConfigPath  string
	DataDir     string
	Demo        bool
	MetricsPort int

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// App is opened in the Before hook
	App *app.App
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "runway", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "runway")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/runway/runway.log
// On Linux: $XDG_STATE_HOME/runway/runway.log (defaults to ~/.local/state/runway/runway.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "runway", "runway.log")
	}

	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "runway", "runway.log")
	}
	return filepath.Join(home, ".local", "state", "runway", "runway.log")
}
