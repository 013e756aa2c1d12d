package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, runtime.NumCPU(), cfg.Indexing.Workers)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 3, cfg.Provider.MaxRetries)
	assert.Equal(t, 30, cfg.Logs.RetentionDays)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	content := `
[indexing]
workers = 3
deny_extensions = [".log", ".tmp"]

[provider]
name = "ollama"
ollama_url = "http://gpu-box:11434"
requests_per_second = 2.5

[search]
default_limit = 25

[logs]
retention_days = 7
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Indexing.Workers)
	assert.Equal(t, []string{".log", ".tmp"}, cfg.Indexing.DenyExtensions)
	assert.Equal(t, "ollama", cfg.Provider.Name)
	assert.Equal(t, "http://gpu-box:11434", cfg.Provider.OllamaURL)
	assert.InDelta(t, 2.5, cfg.Provider.RequestsPerSecond, 1e-9)
	assert.Equal(t, 25, cfg.Search.DefaultLimit)
	assert.Equal(t, 7, cfg.Logs.RetentionDays)

	// Unset sections keep their defaults.
	assert.Equal(t, 10000, cfg.Provider.CacheSize)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	root := t.TempDir()
	content := `
[provider]
name = "openai"

[indexing]
workers = 2
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))
	t.Setenv(EnvProvider, "local")
	t.Setenv(EnvWorkers, "7")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Provider.Name)
	assert.Equal(t, 7, cfg.Indexing.Workers)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("[indexing\nworkers="), 0o644))

	_, err := Load(root)
	assert.Error(t, err)
}

func TestValidateNormalizesAndRejects(t *testing.T) {
	cfg := Default()
	cfg.Indexing.Workers = -1
	cfg.Provider.MaxRetries = 0
	cfg.Search.DefaultLimit = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, runtime.NumCPU(), cfg.Indexing.Workers)
	assert.Equal(t, 1, cfg.Provider.MaxRetries)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)

	cfg = Default()
	cfg.Provider.RequestsPerSecond = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Logs.RetentionDays = -1
	assert.Error(t, cfg.Validate())
}
