// Package config handles configuration loading and validation for todosync.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/colonyops/todosync/internal/core/backoff"
	"github.com/colonyops/todosync/internal/core/styles"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage formats.
const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// DefaultBaseURL is the backend used when none is configured.
const DefaultBaseURL = "https://beta.mrdekk.ru/todobackend"

// TokenEnv overrides remote.token when set.
const TokenEnv = "TODOSYNC_TOKEN"

// Config holds the application configuration.
type Config struct {
	DeviceID string         `yaml:"device_id"`
	Remote   RemoteConfig   `yaml:"remote"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
	UI       UIConfig       `yaml:"ui"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// RemoteConfig points at the todo backend.
type RemoteConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// StoreConfig selects the local storage format and file.
type StoreConfig struct {
	Format   string `yaml:"format"`   // json, csv or sqlite
	Filename string `yaml:"filename"` // relative to the data dir
}

// DatabaseConfig tunes the SQLite pool when store.format is sqlite.
type DatabaseConfig struct {
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// SyncConfig holds sync engine settings.
type SyncConfig struct {
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig configures the backoff applied to every remote call.
type RetryConfig struct {
	Base       time.Duration `yaml:"base"`
	Growth     float64       `yaml:"growth"`
	Cap        time.Duration `yaml:"cap"`
	MaxRetries *int          `yaml:"max_retries"`
	MaxJitter  *float64      `yaml:"max_jitter"`
}

// UIConfig holds display preferences for the command line.
type UIConfig struct {
	HideDone bool   `yaml:"hide_done"`
	Theme    string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	policy := backoff.DefaultPolicy()
	return Config{
		Remote: RemoteConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Format: FormatJSON,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5 * time.Second,
		},
		Sync: SyncConfig{
			Retry: RetryConfig{
				Base:       policy.Base,
				Growth:     policy.Growth,
				Cap:        policy.Cap,
				MaxRetries: &policy.MaxRetries,
				MaxJitter:  &policy.MaxJitter,
			},
		},
		UI: UIConfig{
			Theme: styles.DefaultTheme,
		},
	}
}

// Load reads configuration with Read and validates it.
func Load(configPath, dataDir string) (*Config, error) {
	cfg, err := Read(configPath, dataDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Read reads configuration from the given path and sets the data directory,
// without validating it. If configPath is empty or doesn't exist, returns
// defaults with the provided dataDir.
//
// A .env file in the data directory is loaded first; TODOSYNC_TOKEN from the
// environment overrides remote.token.
func Read(configPath, dataDir string) (*Config, error) {
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

	if err := loadDotEnv(dataDir); err != nil {
		return nil, err
	}
	if token := os.Getenv(TokenEnv); token != "" {
		cfg.Remote.Token = token
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// loadDotEnv loads <dataDir>/.env without overriding variables that are
// already set. A missing file is not an error.
func loadDotEnv(dataDir string) error {
	if dataDir == "" {
		return nil
	}

	path := filepath.Join(dataDir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.DeviceID == "" {
		c.DeviceID = defaultDeviceID()
	}
	if c.Remote.BaseURL == "" {
		c.Remote.BaseURL = defaults.Remote.BaseURL
	}
	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = defaults.Remote.Timeout
	}
	if c.Store.Format == "" {
		c.Store.Format = defaults.Store.Format
	}
	if c.Store.Filename == "" {
		c.Store.Filename = DefaultFilename(c.Store.Format)
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	r := &c.Sync.Retry
	if r.Base == 0 {
		r.Base = defaults.Sync.Retry.Base
	}
	if r.Growth == 0 {
		r.Growth = defaults.Sync.Retry.Growth
	}
	if r.Cap == 0 {
		r.Cap = defaults.Sync.Retry.Cap
	}
	if r.MaxRetries == nil {
		r.MaxRetries = defaults.Sync.Retry.MaxRetries
	}
	if r.MaxJitter == nil {
		r.MaxJitter = defaults.Sync.Retry.MaxJitter
	}
}

func defaultDeviceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "todosync"
	}
	return host
}

// DefaultFilename returns the store file name used for a format.
func DefaultFilename(format string) string {
	switch format {
	case FormatCSV:
		return "todos.csv"
	case FormatSQLite:
		return "todos.db"
	default:
		return "todos.json"
	}
}

// StorePath returns the absolute path of the local task store.
func (c *Config) StorePath() string {
	if filepath.IsAbs(c.Store.Filename) {
		return c.Store.Filename
	}
	return filepath.Join(c.DataDir, c.Store.Filename)
}

// RetryPolicy converts the retry settings into a backoff policy.
func (c *Config) RetryPolicy() backoff.Policy {
	p := backoff.DefaultPolicy()
	r := c.Sync.Retry
	p.Base = r.Base
	p.Growth = r.Growth
	p.Cap = r.Cap
	if r.MaxRetries != nil {
		p.MaxRetries = *r.MaxRetries
	}
	if r.MaxJitter != nil {
		p.MaxJitter = *r.MaxJitter
	}
	return p
}
