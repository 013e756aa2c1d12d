package indexer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/semidx/semidx/internal/analyzer"
	"github.com/semidx/semidx/internal/chunker"
	"github.com/semidx/semidx/internal/chunker/languages"
	"github.com/semidx/semidx/internal/embedder"
	"github.com/semidx/semidx/internal/metadata"
	"github.com/semidx/semidx/internal/pathfilter"
	"github.com/semidx/semidx/internal/runlog"
	"github.com/semidx/semidx/internal/scanner"
	"github.com/semidx/semidx/internal/store"
)

// IndexDirName is the default index directory under the project root.
const IndexDirName = ".index"

// ErrRunInProgress is returned when an indexing run is already active
// on this Indexer.
var ErrRunInProgress = errors.New("indexing run already in progress")

// Indexer coordinates the full pipeline: scan, change detection,
// per-file processing across a bounded worker pool, artifact
// persistence and run logging. The metadata cache it owns is the
// authoritative record of which files completed the whole pipeline.
type Indexer struct {
	projectRoot string
	projectName string

	filter    *pathfilter.Filter
	scanner   *scanner.Scanner
	chunker   *chunker.Chunker
	analyzers *analyzer.Chain
	provider  embedder.Provider
	store     *store.Store
	cache     *metadata.Cache
	journal   *runlog.Journal
	logger    *slog.Logger

	workers int
	lock    runLock
}

// Config controls Indexer construction.
type Config struct {
	// ProjectRoot is the absolute directory to index.
	ProjectRoot string
	// IndexDir overrides the index output directory
	// (default <ProjectRoot>/.index).
	IndexDir string
	// Provider supplies descriptions and embeddings.
	Provider embedder.Provider
	// Workers bounds the worker pool (default runtime.NumCPU()).
	Workers int
	// DenyExtensions extends the built-in extension denylist.
	DenyExtensions []string
	// Logger receives structured progress and error logs
	// (default slog.Default()).
	Logger *slog.Logger
}

// New builds an Indexer, creates the index directory layout, and warms
// the metadata cache from persisted records. Layout failures are
// fatal: nothing can be indexed without a writable index directory.
func New(cfg Config) (*Indexer, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("embedding provider is required")
	}

	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, err
	}
	indexDir := cfg.IndexDir
	if indexDir == "" {
		indexDir = filepath.Join(root, IndexDirName)
	}

	filter, err := pathfilter.New(pathfilter.Config{
		Root:           root,
		IndexDir:       indexDir,
		DenyExtensions: cfg.DenyExtensions,
	})
	if err != nil {
		return nil, fmt.Errorf("build path filter: %w", err)
	}

	st := store.New(root, indexDir)
	if err := st.EnsureLayout(); err != nil {
		return nil, err
	}
	cache, err := st.LoadCache()
	if err != nil {
		return nil, fmt.Errorf("load metadata cache: %w", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	projectName := filepath.Base(root)

	return &Indexer{
		projectRoot: root,
		projectName: projectName,
		filter:      filter,
		scanner:     scanner.New(filter),
		chunker:     chunker.New(languages.DefaultRegistry()),
		analyzers:   analyzer.NewChain(),
		provider:    cfg.Provider,
		store:       st,
		cache:       cache,
		journal:     runlog.NewJournal(st.LogsPath(), projectName),
		logger:      logger,
		workers:     workers,
	}, nil
}

// Store exposes the artifact store, for search loading and status
// commands.
func (idx *Indexer) Store() *store.Store { return idx.store }

// Journal exposes the run log journal, for the scan planner.
func (idx *Indexer) Journal() *runlog.Journal { return idx.journal }

// Provider exposes the configured embedding provider, so queries use
// the same vector space as the index.
func (idx *Indexer) Provider() embedder.Provider { return idx.provider }

// Filter exposes the path filter, for walk pruning by the file
// watcher.
func (idx *Indexer) Filter() *pathfilter.Filter { return idx.filter }

// RemoveFile drops one absolute path from the index: cache entry and
// artifacts. Unknown paths are a no-op.
func (idx *Indexer) RemoveFile(absPath string) error {
	if _, ok := idx.cache.Get(absPath); !ok {
		return nil
	}
	return idx.removeIndexed(absPath)
}

// ProjectRoot returns the absolute project root.
func (idx *Indexer) ProjectRoot() string { return idx.projectRoot }

// GetIndexedFiles returns the project-relative paths of every file the
// cache knows as indexed, sorted.
func (idx *Indexer) GetIndexedFiles() []string {
	paths := idx.cache.Paths()
	rel := make([]string, 0, len(paths))
	for _, p := range paths {
		rel = append(rel, idx.store.RelPath(p))
	}
	sort.Strings(rel)
	return rel
}

// GetSampleFiles returns up to n indexed paths, deterministic across
// calls.
func (idx *Indexer) GetSampleFiles(n int) []string {
	files := idx.GetIndexedFiles()
	if n < 0 {
		n = 0
	}
	if len(files) > n {
		files = files[:n]
	}
	return files
}

// CleanupDeletedFiles removes cache entries and persisted artifacts
// for indexed files that no longer exist on disk. Returns the removed
// paths.
func (idx *Indexer) CleanupDeletedFiles() ([]string, error) {
	var removed []string
	for _, path := range idx.cache.Paths() {
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return removed, fmt.Errorf("stat %s: %w", path, err)
		}
		if err := idx.removeIndexed(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}
	sort.Strings(removed)
	return removed, nil
}

// CleanupIndexFiles removes stray cache entries and artifacts that
// point inside the index directory itself; those must never be
// indexed.
func (idx *Indexer) CleanupIndexFiles() ([]string, error) {
	indexRoot := idx.store.IndexRoot() + string(filepath.Separator)
	var removed []string
	for _, path := range idx.cache.Paths() {
		if !strings.HasPrefix(path, indexRoot) {
			continue
		}
		if err := idx.removeIndexed(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}
	sort.Strings(removed)
	return removed, nil
}

// removeIndexed drops one path from the cache and deletes its
// artifacts.
func (idx *Indexer) removeIndexed(absPath string) error {
	if err := idx.store.DeleteArtifacts(absPath); err != nil {
		return fmt.Errorf("delete artifacts for %s: %w", absPath, err)
	}
	idx.cache.Delete(absPath)
	return nil
}
