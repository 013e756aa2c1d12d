package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/semidx/semidx/internal/config"
	"github.com/semidx/semidx/internal/embedder"
	"github.com/semidx/semidx/internal/indexer"
)

var (
	flagRoot     string
	flagProvider string
	flagWorkers  int
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "semidx",
	Short: "Local incremental code indexing and semantic search",
	Long: `semidx maintains a local semantic index of a project tree:
files are chunked, embedded and described, and only changed files are
reprocessed on subsequent runs. The index lives under <project>/.index.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagRoot, "root", "r", ".", "project root to operate on")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "embedding provider: openai, ollama or local")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "worker pool size (default: CPU count)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
}

// setup resolves the project root, loads configuration and builds the
// indexer with a resilient provider.
func setup() (*indexer.Indexer, *config.Config, error) {
	root, err := filepath.Abs(flagRoot)
	if err != nil {
		return nil, nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s is not a directory", root)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}
	if flagProvider != "" {
		cfg.Provider.Name = flagProvider
	}
	if flagWorkers > 0 {
		cfg.Indexing.Workers = flagWorkers
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, nil, err
	}

	idx, err := indexer.New(indexer.Config{
		ProjectRoot:    root,
		IndexDir:       cfg.Indexing.IndexDir,
		Provider:       provider,
		Workers:        cfg.Indexing.Workers,
		DenyExtensions: cfg.Indexing.DenyExtensions,
		Logger:         newLogger(),
	})
	if err != nil {
		return nil, nil, err
	}
	return idx, cfg, nil
}

// buildProvider creates the configured provider wrapped with cache,
// rate limiting and retry.
func buildProvider(cfg *config.Config) (embedder.Provider, error) {
	var raw embedder.Provider
	var err error
	if cfg.Provider.Name != "" {
		raw, err = embedder.New(embedder.Config{
			Provider:   cfg.Provider.Name,
			APIKey:     cfg.Provider.OpenAIAPIKey,
			BaseURL:    cfg.Provider.OllamaURL,
			EmbedModel: cfg.Provider.EmbedModel,
			ChatModel:  cfg.Provider.ChatModel,
		})
	} else {
		raw, err = embedder.NewFromEnv()
	}
	if err != nil {
		return nil, err
	}

	retry := embedder.DefaultRetryConfig()
	retry.MaxRetries = cfg.Provider.MaxRetries
	return embedder.NewResilient(raw, embedder.ResilientConfig{
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
		Burst:             cfg.Provider.Burst,
		CacheSize:         cfg.Provider.CacheSize,
		Retry:             retry,
	}), nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
