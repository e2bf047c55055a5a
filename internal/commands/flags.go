package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/todosync/internal/core/config"
	"github.com/urfave/cli/v3"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// ConfigOnly reports whether the command about to run is one of the config
// subcommands. Those get the unvalidated configuration from LoadConfig and
// need no App.
func ConfigOnly(c *cli.Command) bool {
	return c.Args().First() == "config"
}

// LoadConfig loads the configuration into f.Config. When configOnly is set
// the file is read without validation so that config validate can report
// every field error itself.
func (f *Flags) LoadConfig(configOnly bool) error {
	load := config.Load
	if configOnly {
		load = config.Read
	}

	cfg, err := load(f.ConfigPath, f.DataDir)
	if err != nil {
		return err
	}
	f.Config = cfg
	return nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "todosync", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "todosync")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/todosync/todosync.log
// On Linux: $XDG_STATE_HOME/todosync/todosync.log (defaults to ~/.local/state/todosync/todosync.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "todosync", "todosync.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "todosync", "todosync.log")
	}

	return filepath.Join(home, ".local", "state", "todosync", "todosync.log")
}
