package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/semidx/semidx/internal/indexer"
)

// DefaultDebounce is how long a file must stay quiet before it is
// reindexed. Editors produce bursts of writes per save.
const DefaultDebounce = 500 * time.Millisecond

// flushInterval is how often pending changes are checked against the
// debounce window.
const flushInterval = 100 * time.Millisecond

// Watcher keeps an index current by reindexing files as they change.
// Write and create events are debounced per path; remove and rename
// events drop the path from the index immediately.
type Watcher struct {
	idx      *indexer.Indexer
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// New creates a watcher over the indexer's project root.
func New(idx *indexer.Indexer, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		idx:      idx,
		watcher:  fsw,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start registers the project tree and begins processing events.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.idx.ProjectRoot()); err != nil {
		return err
	}

	w.done.Add(2)
	go w.processEvents()
	go w.flushPending()
	return nil
}

// Close stops watching and waits for in-flight processing to finish.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.done.Wait()
	return err
}

// addRecursive registers dir and every non-excluded subdirectory.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.idx.Filter().ExcludedDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("watch registration failed", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.done.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		if err := w.idx.RemoveFile(event.Name); err != nil {
			w.logger.Warn("remove from index failed", "path", event.Name, "error", err)
		}
		w.mu.Lock()
		delete(w.pending, event.Name)
		w.mu.Unlock()
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.idx.Filter().ExcludedDir(event.Name) {
				_ = w.addRecursive(event.Name)
			}
			return
		}
	}

	if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
		w.mu.Lock()
		w.pending[event.Name] = time.Now()
		w.mu.Unlock()
	}
}

// flushPending reindexes paths that have stayed quiet for the
// debounce window.
func (w *Watcher) flushPending() {
	defer w.done.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			for _, path := range w.takeQuiet() {
				w.reindex(path)
			}
		}
	}
}

// takeQuiet removes and returns pending paths past the debounce
// window.
func (w *Watcher) takeQuiet() []string {
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	var quiet []string
	for path, changed := range w.pending {
		if now.Sub(changed) >= w.debounce {
			quiet = append(quiet, path)
			delete(w.pending, path)
		}
	}
	return quiet
}

func (w *Watcher) reindex(path string) {
	if _, err := os.Stat(path); err != nil {
		// Deleted between the event and the flush.
		if removeErr := w.idx.RemoveFile(path); removeErr != nil {
			w.logger.Warn("remove from index failed", "path", path, "error", removeErr)
		}
		return
	}

	meta, err := w.idx.ReindexFile(w.ctx, path)
	if errors.Is(err, indexer.ErrRunInProgress) {
		// An indexing run holds the lock; keep the change pending and
		// let a later flush retry it.
		w.mu.Lock()
		w.pending[path] = time.Now()
		w.mu.Unlock()
		return
	}
	if err != nil {
		w.logger.Debug("watch reindex skipped", "path", path, "error", err)
		return
	}
	w.logger.Info("reindexed", "path", meta.Path, "chunks", len(meta.Chunks))
}
