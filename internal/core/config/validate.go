package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/colonyops/todosync/internal/core/styles"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks the structural validity of the configuration.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, notEmpty),
		criterio.Run("device_id", c.DeviceID, notEmpty),
		criterio.Run("remote.base_url", c.Remote.BaseURL, httpURL),
		c.validateStore(),
		c.validateDatabase(),
		c.validateRetry(),
		criterio.Run("ui.theme", c.UI.Theme, knownTheme),
	)
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

func (c *Config) validateStore() error {
	var errs criterio.FieldErrorsBuilder
	switch c.Store.Format {
	case FormatJSON, FormatCSV, FormatSQLite:
	default:
		errs = errs.Append("store.format", fmt.Errorf("unknown format %q (use json, csv or sqlite)", c.Store.Format))
	}
	if c.Store.Filename == "" {
		errs = errs.Append("store.filename", fmt.Errorf("cannot be empty"))
	}
	if c.Remote.Timeout < 0 {
		errs = errs.Append("remote.timeout", fmt.Errorf("cannot be negative"))
	}
	return errs.ToError()
}

func (c *Config) validateDatabase() error {
	var errs criterio.FieldErrorsBuilder
	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", fmt.Errorf("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("cannot be negative"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", fmt.Errorf("cannot be negative"))
	}
	return errs.ToError()
}

func (c *Config) validateRetry() error {
	r := c.Sync.Retry
	var errs criterio.FieldErrorsBuilder
	if r.Base < 0 {
		errs = errs.Append("sync.retry.base", fmt.Errorf("cannot be negative"))
	}
	if r.Growth < 1 {
		errs = errs.Append("sync.retry.growth", fmt.Errorf("must be at least 1, got %v", r.Growth))
	}
	if r.Cap < r.Base {
		errs = errs.Append("sync.retry.cap", fmt.Errorf("must not be below sync.retry.base"))
	}
	if r.MaxRetries != nil && *r.MaxRetries < 0 {
		errs = errs.Append("sync.retry.max_retries", fmt.Errorf("cannot be negative"))
	}
	if r.MaxJitter != nil && (*r.MaxJitter < 0 || *r.MaxJitter > 1) {
		errs = errs.Append("sync.retry.max_jitter", fmt.Errorf("must be between 0 and 1, got %v", *r.MaxJitter))
	}
	return errs.ToError()
}

// ValidateDeep performs comprehensive validation of the configuration including
// file accessibility. The configPath argument specifies the config file location
// to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("store.filename", c.StorePath(), isFileOrNotExist),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Remote.Token == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Remote",
			Item:     "token",
			Message:  fmt.Sprintf("no token set; requests will be rejected (set remote.token or %s)", TokenEnv),
		})
	}
	if c.Store.Format != FormatSQLite && c.Database != DefaultConfig().Database {
		warnings = append(warnings, ValidationWarning{
			Category: "Database",
			Message:  "database settings are ignored unless store.format is sqlite",
		})
	}
	if c.Store.Format == FormatCSV {
		warnings = append(warnings, ValidationWarning{
			Category: "Store",
			Item:     "format",
			Message:  "csv rows are not quoted; task text and ids containing commas or line breaks are rejected",
		})
	}

	return warnings
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

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func httpURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
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

// isFileOrNotExist validates that a path is a regular file or doesn't exist
// while its parent is usable.
func isFileOrNotExist(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return isDirectoryOrNotExist(filepath.Dir(path))
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}
