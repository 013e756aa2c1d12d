package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/BurntSushi/toml"
)

// FileName is the per-project configuration file, looked up at the
// project root.
const FileName = ".semidx.toml"

// Environment variable overrides. They win over file values.
const (
	EnvProvider  = "SEMIDX_PROVIDER"
	EnvOllamaURL = "SEMIDX_OLLAMA_URL"
	EnvWorkers   = "SEMIDX_WORKERS"
	EnvOpenAIKey = "OPENAI_API_KEY"
)

// Config is the complete semidx configuration.
type Config struct {
	Indexing IndexingConfig `toml:"indexing"`
	Provider ProviderConfig `toml:"provider"`
	Search   SearchConfig   `toml:"search"`
	Logs     LogsConfig     `toml:"logs"`
}

// IndexingConfig controls scanning and the worker pool.
type IndexingConfig struct {
	// Workers bounds the indexing worker pool (default: CPU count).
	Workers int `toml:"workers"`
	// IndexDir overrides the index directory (default: <root>/.index).
	IndexDir string `toml:"index_dir"`
	// DenyExtensions extends the built-in extension denylist.
	DenyExtensions []string `toml:"deny_extensions"`
}

// ProviderConfig selects and tunes the description/embedding provider.
type ProviderConfig struct {
	// Name is "openai", "ollama" or "local". Empty selects from the
	// environment.
	Name string `toml:"name"`
	// OpenAIAPIKey authenticates the OpenAI provider.
	OpenAIAPIKey string `toml:"openai_api_key"`
	// OllamaURL is the Ollama server base URL.
	OllamaURL string `toml:"ollama_url"`
	// EmbedModel and ChatModel override the provider's model defaults.
	EmbedModel string `toml:"embed_model"`
	ChatModel  string `toml:"chat_model"`
	// RequestsPerSecond caps provider calls across workers
	// (0 disables rate limiting).
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// Burst is the limiter burst size.
	Burst int `toml:"burst"`
	// CacheSize is the embedding cache capacity.
	CacheSize int `toml:"cache_size"`
	// MaxRetries bounds provider call retries.
	MaxRetries int `toml:"max_retries"`
}

// SearchConfig tunes query behavior.
type SearchConfig struct {
	// DefaultLimit is the result count when a query does not specify
	// one.
	DefaultLimit int `toml:"default_limit"`
}

// LogsConfig controls run log retention.
type LogsConfig struct {
	// RetentionDays prunes run logs older than this many days
	// (0 keeps everything).
	RetentionDays int `toml:"retention_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Indexing: IndexingConfig{
			Workers: runtime.NumCPU(),
		},
		Provider: ProviderConfig{
			RequestsPerSecond: 8,
			Burst:             4,
			CacheSize:         10000,
			MaxRetries:        3,
		},
		Search: SearchConfig{
			DefaultLimit: 10,
		},
		Logs: LogsConfig{
			RetentionDays: 30,
		},
	}
}

// Load reads <projectRoot>/.semidx.toml if present, layered over the
// defaults, then applies environment overrides and validates.
func Load(projectRoot string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(projectRoot, FileName)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", FileName, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment variables over file values.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvProvider); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv(EnvOpenAIKey); v != "" && c.Provider.OpenAIAPIKey == "" {
		c.Provider.OpenAIAPIKey = v
	}
	if v := os.Getenv(EnvOllamaURL); v != "" {
		c.Provider.OllamaURL = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Indexing.Workers = n
		}
	}
}

// Validate checks field ranges, normalizing recoverable values.
func (c *Config) Validate() error {
	if c.Indexing.Workers <= 0 {
		c.Indexing.Workers = runtime.NumCPU()
	}
	if c.Provider.RequestsPerSecond < 0 {
		return fmt.Errorf("provider.requests_per_second must not be negative")
	}
	if c.Provider.MaxRetries < 1 {
		c.Provider.MaxRetries = 1
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 10
	}
	if c.Logs.RetentionDays < 0 {
		return fmt.Errorf("logs.retention_days must not be negative")
	}
	return nil
}
