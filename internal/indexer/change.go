package indexer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/semidx/semidx/internal/metadata"
	"github.com/semidx/semidx/internal/scanner"
	"github.com/semidx/semidx/pkg/types"
)

// ChangeKind classifies one file against the metadata cache.
type ChangeKind string

const (
	ChangeNew       ChangeKind = "new"
	ChangeChanged   ChangeKind = "changed"
	ChangeUnchanged ChangeKind = "unchanged"
)

// ChangeSet is the outcome of comparing a scan against the cache.
type ChangeSet struct {
	// New and Changed together form the work list.
	New     []*types.DirectoryEntry
	Changed []*types.DirectoryEntry
	// Unchanged counts files needing no work.
	Unchanged int
	// Deleted holds absolute paths present in the cache but gone from
	// disk.
	Deleted []string
	// Ignored counts files the filter rejected during the scan.
	Ignored int
	// ScanErrors carries per-path walk failures (logged, not fatal).
	ScanErrors []scanner.ScanError
}

// WorkList returns new and changed entries, new first, each group
// ordered by path.
func (c *ChangeSet) WorkList() []*types.DirectoryEntry {
	work := make([]*types.DirectoryEntry, 0, len(c.New)+len(c.Changed))
	work = append(work, c.New...)
	work = append(work, c.Changed...)
	return work
}

// classify compares one scanned file against the cache. The content
// hash is the source of truth: a file is changed only when its hash
// differs from the cached hash, so touched-but-identical files stay
// unchanged and byte-level edits are caught even when the mtime is
// preserved.
func classify(entry *types.DirectoryEntry, cached metadata.Entry, ok bool) ChangeKind {
	if !ok {
		return ChangeNew
	}
	if entry.ContentHash == cached.ContentHash {
		return ChangeUnchanged
	}
	return ChangeChanged
}

// detectChanges scans the tree and classifies every indexable file,
// then sweeps the cache for deletions.
func (idx *Indexer) detectChanges() (*ChangeSet, error) {
	result, err := idx.scanner.Scan(idx.projectRoot)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", idx.projectRoot, err)
	}

	changes := &ChangeSet{
		Ignored:    result.IgnoredCount(),
		ScanErrors: result.Errors,
	}

	seen := make(map[string]bool)
	for _, entry := range result.IndexableFiles() {
		seen[entry.Path] = true
		cached, ok := idx.cache.Get(entry.Path)
		switch classify(entry, cached, ok) {
		case ChangeNew:
			changes.New = append(changes.New, entry)
		case ChangeChanged:
			changes.Changed = append(changes.Changed, entry)
		default:
			changes.Unchanged++
		}
	}

	changes.Deleted = sweepDeleted(idx.cache.Paths(), seen, changes.ScanErrors)

	return changes, nil
}

// sweepDeleted returns cached paths that a scan proved gone. A path
// that failed to scan proves nothing: the file (or its whole directory,
// when the walk could not read it) is still on disk, so its index
// entries are kept until a clean scan no longer reports it.
func sweepDeleted(cached []string, seen map[string]bool, scanErrors []scanner.ScanError) []string {
	var deleted []string
	for _, path := range cached {
		if seen[path] || underScanError(path, scanErrors) {
			continue
		}
		deleted = append(deleted, path)
	}
	sort.Strings(deleted)
	return deleted
}

// underScanError reports whether path is a scan-error path or lives
// inside an errored directory.
func underScanError(path string, scanErrors []scanner.ScanError) bool {
	for _, scanErr := range scanErrors {
		if path == scanErr.Path || strings.HasPrefix(path, scanErr.Path+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// GetOutdatedFiles returns the project-relative paths classified new
// or changed, sorted. With cleanupDeleted set, cache entries and
// artifacts for deleted files are removed first; otherwise the call is
// a pure read.
func (idx *Indexer) GetOutdatedFiles(cleanupDeleted bool) ([]string, error) {
	changes, err := idx.detectChanges()
	if err != nil {
		return nil, err
	}

	if cleanupDeleted {
		for _, path := range changes.Deleted {
			if err := idx.removeIndexed(path); err != nil {
				return nil, err
			}
		}
	}

	outdated := make([]string, 0, len(changes.New)+len(changes.Changed))
	for _, entry := range changes.WorkList() {
		outdated = append(outdated, idx.store.RelPath(entry.Path))
	}
	sort.Strings(outdated)
	return outdated, nil
}

// Status is the answer to "is the index complete and up to date".
type Status struct {
	Complete      bool   `json:"complete"`
	Reason        string `json:"reason"`
	OutdatedCount int    `json:"outdatedCount"`
	MissingCount  int    `json:"missingCount"`
	DeletedCount  int    `json:"deletedCount"`
	IgnoredCount  int    `json:"ignoredCount"`
}

// IsIndexComplete compares a fresh scan against the cache without
// mutating anything.
func (idx *Indexer) IsIndexComplete() (*Status, error) {
	changes, err := idx.detectChanges()
	if err != nil {
		return nil, err
	}

	status := &Status{
		OutdatedCount: len(changes.Changed),
		MissingCount:  len(changes.New),
		DeletedCount:  len(changes.Deleted),
		IgnoredCount:  changes.Ignored,
	}

	switch {
	case status.MissingCount > 0:
		status.Reason = fmt.Sprintf("%d files not yet indexed", status.MissingCount)
	case status.OutdatedCount > 0:
		status.Reason = fmt.Sprintf("%d files changed since last index", status.OutdatedCount)
	case status.DeletedCount > 0:
		status.Reason = fmt.Sprintf("%d indexed files deleted from disk", status.DeletedCount)
	default:
		status.Complete = true
		status.Reason = "index is up to date"
	}
	return status, nil
}
