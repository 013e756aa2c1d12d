package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by NewFromEnv.
const (
	EnvProvider     = "SEMIDX_PROVIDER"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvOllamaURL    = "SEMIDX_OLLAMA_URL"
)

// Config holds provider construction settings.
type Config struct {
	Provider   string
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
}

// New creates a raw provider from explicit configuration.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey)
	case ProviderOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.EmbedModel, cfg.ChatModel), nil
	case ProviderLocal:
		return NewLocalProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

// NewFromEnv creates a provider from the environment. Priority:
// explicit SEMIDX_PROVIDER, then an available OpenAI key, then Ollama
// if a URL is configured, then the offline local provider.
func NewFromEnv() (Provider, error) {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return New(Config{
			Provider: provider,
			APIKey:   os.Getenv(EnvOpenAIAPIKey),
			BaseURL:  os.Getenv(EnvOllamaURL),
		})
	}
	if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
		return NewOpenAIProvider(key)
	}
	if url := os.Getenv(EnvOllamaURL); url != "" {
		return NewOllamaProvider(url, "", ""), nil
	}
	return NewLocalProvider(), nil
}
