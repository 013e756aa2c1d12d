package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/semidx/semidx/internal/runlog"
	"github.com/semidx/semidx/internal/scanner"
	"github.com/semidx/semidx/pkg/types"
)

// Progress reports one completed file. The callback runs on the
// collector goroutine that drains worker outcomes, so calls are
// sequential, never concurrent.
type Progress struct {
	Path      string
	Err       error
	Completed int
	Total     int
}

// Failure is one file that could not be indexed.
type Failure struct {
	Path string
	Err  error
}

// Options controls one indexing run.
type Options struct {
	// Workers overrides the pool size for this run.
	Workers int
	// Progress, if set, is called once per completed file.
	Progress func(Progress)
}

// Result is the outcome of one indexing run.
type Result struct {
	// Indexed holds metadata for every file that completed the
	// pipeline.
	Indexed []*types.FileMetadata
	// Failed lists files whose pipeline failed; they are excluded from
	// Indexed and from the cache.
	Failed []Failure
	// Deleted lists project-relative paths cleaned up during the run.
	Deleted []string
	// Unchanged counts files skipped as already current.
	Unchanged int
	// Cancelled reports whether the run stopped early on context
	// cancellation.
	Cancelled bool
	// Run is the persisted run log record.
	Run *runlog.Run
}

type outcome struct {
	entry *types.DirectoryEntry
	meta  *types.FileMetadata
	err   error
}

// IndexDirectory scans the project, computes the work list, and
// processes it across the worker pool. Cancellation is cooperative:
// it is checked between dispatches, in-flight files run to completion,
// and undispatched work is abandoned. Per-file failures never abort
// the run.
func (idx *Indexer) IndexDirectory(ctx context.Context, opts *Options) (*Result, error) {
	if !idx.lock.tryAcquire() {
		return nil, ErrRunInProgress
	}
	defer idx.lock.release()

	start := time.Now()
	changes, err := idx.detectChanges()
	if err != nil {
		return nil, err
	}
	for _, scanErr := range changes.ScanErrors {
		idx.logger.Warn("scan error", "path", scanErr.Path, "error", scanErr.Err)
	}

	run := runlog.NewRun(idx.projectName)
	run.Stats.FilesIgnored = changes.Ignored

	result := &Result{Run: run, Unchanged: changes.Unchanged}
	for _, path := range changes.Deleted {
		if err := idx.removeIndexed(path); err != nil {
			return nil, err
		}
		rel := idx.store.RelPath(path)
		run.AddEvent(rel, runlog.EventDeleted, 0, nil)
		result.Deleted = append(result.Deleted, rel)
	}

	work := changes.WorkList()
	idx.logger.Info("indexing run started",
		"run", run.RunID,
		"new", len(changes.New),
		"changed", len(changes.Changed),
		"unchanged", changes.Unchanged,
		"deleted", len(changes.Deleted),
		"workers", idx.poolSize(opts))

	result.Cancelled = idx.processWorkList(ctx, work, opts, run, result)

	run.Stats.ProcessingTime = time.Since(start).Milliseconds()
	run.Status = runlog.StatusCompleted
	if result.Cancelled {
		run.Status = runlog.StatusCancelled
	}
	if err := idx.journal.Append(run); err != nil {
		idx.logger.Warn("run log not written", "run", run.RunID, "error", err)
	}

	idx.logger.Info("indexing run finished",
		"run", run.RunID,
		"status", run.Status,
		"indexed", run.Stats.FilesIndexed,
		"failed", run.Stats.FilesFailed,
		"duration", time.Since(start))
	return result, nil
}

// processWorkList fans the work list out across the pool and drains
// outcomes sequentially. Reports whether the run was cancelled.
func (idx *Indexer) processWorkList(ctx context.Context, work []*types.DirectoryEntry, opts *Options, run *runlog.Run, result *Result) bool {
	if len(work) == 0 {
		return false
	}

	results := make(chan outcome)
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		completed := 0
		for o := range results {
			completed++
			rel := idx.store.RelPath(o.entry.Path)
			if o.err != nil {
				idx.logger.Error("file failed", "path", rel, "error", o.err)
				run.AddEvent(rel, runlog.EventFailed, 0, o.err)
				result.Failed = append(result.Failed, Failure{Path: rel, Err: o.err})
			} else {
				run.AddEvent(rel, runlog.EventIndexed, o.entry.Size, nil)
				result.Indexed = append(result.Indexed, o.meta)
			}
			if opts != nil && opts.Progress != nil {
				opts.Progress(Progress{Path: rel, Err: o.err, Completed: completed, Total: len(work)})
			}
		}
	}()

	sem := semaphore.NewWeighted(int64(idx.poolSize(opts)))
	var g errgroup.Group
	cancelled := false
	for _, entry := range work {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			cancelled = true
			break
		}
		entry := entry
		g.Go(func() error {
			defer sem.Release(1)
			meta, err := idx.processFile(ctx, entry)
			results <- outcome{entry: entry, meta: meta, err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(results)
	<-collectorDone
	return cancelled
}

func (idx *Indexer) poolSize(opts *Options) int {
	if opts != nil && opts.Workers > 0 {
		return opts.Workers
	}
	return idx.workers
}

// ForceReindexAll clears the metadata cache and reindexes everything.
func (idx *Indexer) ForceReindexAll(ctx context.Context, opts *Options) (*Result, error) {
	idx.cache.Clear()
	return idx.IndexDirectory(ctx, opts)
}

// ReindexFile reprocesses exactly one file outside the work-list flow,
// recomputing its hash first. The path must be an indexable file under
// the project root. Like IndexDirectory it holds the run lock, so a
// single-file reindex never interleaves with a full run.
func (idx *Indexer) ReindexFile(ctx context.Context, path string) (*types.FileMetadata, error) {
	if !idx.lock.tryAcquire() {
		return nil, ErrRunInProgress
	}
	defer idx.lock.release()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(abs, idx.projectRoot+string(filepath.Separator)) {
		return nil, fmt.Errorf("%s is outside the project root", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !idx.filter.ShouldIndex(abs, info.IsDir()) {
		return nil, fmt.Errorf("%s is excluded from indexing", path)
	}

	hash, err := scanner.HashFile(abs)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}

	entry := &types.DirectoryEntry{
		Path:        abs,
		Name:        filepath.Base(abs),
		Type:        types.EntryFile,
		Size:        info.Size(),
		Extension:   strings.ToLower(filepath.Ext(abs)),
		ModTime:     info.ModTime(),
		ContentHash: hash,
	}
	return idx.processFile(ctx, entry)
}
