package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(TokenEnv, "")
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, DefaultBaseURL, cfg.Remote.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, FormatJSON, cfg.Store.Format)
	assert.Equal(t, filepath.Join(dataDir, "todos.json"), cfg.StorePath())
	assert.NotEmpty(t, cfg.DeviceID)

	p := cfg.RetryPolicy()
	assert.Equal(t, 2*time.Second, p.Base)
	assert.InDelta(t, 1.5, p.Growth, 1e-9)
	assert.Equal(t, 120*time.Second, p.Cap)
	assert.Equal(t, 4, p.Attempts())
	assert.InDelta(t, 0.05, p.MaxJitter, 1e-9)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	cfg, err := Load(filepath.Join(dataDir, "nope.yaml"), dataDir)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Store.Format)
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv(TokenEnv, "")
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "config.yaml")
	writeFile(t, path, `
device_id: laptop
remote:
  base_url: http://localhost:8080/todo
  token: secret
store:
  format: sqlite
sync:
  retry:
    base: 10ms
    max_retries: 0
    max_jitter: 0
ui:
  hide_done: true
`)

	cfg, err := Load(path, dataDir)
	require.NoError(t, err)

	assert.Equal(t, "laptop", cfg.DeviceID)
	assert.Equal(t, "http://localhost:8080/todo", cfg.Remote.BaseURL)
	assert.Equal(t, "secret", cfg.Remote.Token)
	assert.Equal(t, filepath.Join(dataDir, "todos.db"), cfg.StorePath())
	assert.True(t, cfg.UI.HideDone)

	p := cfg.RetryPolicy()
	assert.Equal(t, 10*time.Millisecond, p.Base)
	assert.Equal(t, 1, p.Attempts(), "explicit zero retries is kept")
	assert.Zero(t, p.MaxJitter)
	assert.Equal(t, 120*time.Second, p.Cap, "unset fields keep defaults")
}

func TestLoad_AbsoluteFilename(t *testing.T) {
	dataDir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "mine.csv")
	path := filepath.Join(dataDir, "config.yaml")
	writeFile(t, path, "store:\n  format: csv\n  filename: "+abs+"\n")

	cfg, err := Load(path, dataDir)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.StorePath())
}

func TestLoad_InvalidYAML(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "config.yaml")
	writeFile(t, path, "store: [")

	_, err := Load(path, dataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidFormat(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "config.yaml")
	writeFile(t, path, "store:\n  format: xml\n")

	_, err := Load(path, dataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.format")
}

func TestRead_SkipsValidation(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "config.yaml")
	writeFile(t, path, "store:\n  format: xml\n")

	cfg, err := Read(path, dataDir)
	require.NoError(t, err)
	assert.Equal(t, "xml", cfg.Store.Format)
	assert.ErrorContains(t, cfg.Validate(), "store.format")
}

func TestLoad_TokenFromEnv(t *testing.T) {
	t.Setenv(TokenEnv, "from-env")
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "config.yaml")
	writeFile(t, path, "remote:\n  token: from-file\n")

	cfg, err := Load(path, dataDir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Remote.Token)
}

func TestLoad_TokenFromDotEnv(t *testing.T) {
	t.Setenv(TokenEnv, "")
	require.NoError(t, os.Unsetenv(TokenEnv))
	dataDir := t.TempDir()
	writeFile(t, filepath.Join(dataDir, ".env"), TokenEnv+"=from-dotenv\n")

	cfg, err := Load("", dataDir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Remote.Token)
}

func TestDefaultFilename(t *testing.T) {
	assert.Equal(t, "todos.json", DefaultFilename(FormatJSON))
	assert.Equal(t, "todos.csv", DefaultFilename(FormatCSV))
	assert.Equal(t, "todos.db", DefaultFilename(FormatSQLite))
	assert.Equal(t, "todos.json", DefaultFilename(""))
}
