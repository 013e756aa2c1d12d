package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/semidx/semidx/internal/pathfilter"
	"github.com/semidx/semidx/pkg/types"
)

// ScanError records a single unreadable path encountered during a
// walk. The walk itself continues past these.
type ScanError struct {
	Path string
	Err  error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

// Result is the outcome of one scan: the entry tree plus any per-path
// errors that were skipped over.
type Result struct {
	Root   *types.DirectoryEntry
	Errors []ScanError
}

// Scanner walks a project tree once, producing a DirectoryEntry tree
// annotated with size, extension, modification time, and a content
// hash for files the filter accepts.
type Scanner struct {
	filter *pathfilter.Filter
}

// New creates a Scanner using the given filter for exclusion and walk
// pruning decisions.
func New(filter *pathfilter.Filter) *Scanner {
	return &Scanner{filter: filter}
}

// Scan walks the tree rooted at root depth-first. Content hashes are
// computed lazily, only for files the filter accepts, so excluded
// binaries and vendored trees stay cheap to skip. Unreadable entries
// are recorded in the result and skipped without aborting the walk.
func (s *Scanner) Scan(root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", absRoot)
	}

	result := &Result{}
	result.Root = s.scanDir(absRoot, info, result)
	return result, nil
}

// scanDir builds the entry for one directory and recurses into its
// children.
func (s *Scanner) scanDir(absPath string, info fs.FileInfo, result *Result) *types.DirectoryEntry {
	entry := &types.DirectoryEntry{
		Path:    absPath,
		Name:    filepath.Base(absPath),
		Type:    types.EntryDir,
		ModTime: info.ModTime(),
	}

	children, err := os.ReadDir(absPath)
	if err != nil {
		result.Errors = append(result.Errors, ScanError{Path: absPath, Err: err})
		return entry
	}

	// ReadDir returns names sorted already; keep the ordering explicit
	// so the tree shape is deterministic across platforms.
	sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })

	for _, child := range children {
		childPath := filepath.Join(absPath, child.Name())

		if child.IsDir() {
			if s.filter.ExcludedDir(childPath) {
				continue
			}
			childInfo, err := child.Info()
			if err != nil {
				result.Errors = append(result.Errors, ScanError{Path: childPath, Err: err})
				continue
			}
			entry.Children = append(entry.Children, s.scanDir(childPath, childInfo, result))
			continue
		}

		// Symlinks and other irregular entries are not indexed.
		if !child.Type().IsRegular() {
			continue
		}

		childInfo, err := child.Info()
		if err != nil {
			result.Errors = append(result.Errors, ScanError{Path: childPath, Err: err})
			continue
		}

		fileEntry := &types.DirectoryEntry{
			Path:      childPath,
			Name:      child.Name(),
			Type:      types.EntryFile,
			Size:      childInfo.Size(),
			Extension: strings.ToLower(filepath.Ext(child.Name())),
			ModTime:   childInfo.ModTime(),
		}

		if s.filter.ShouldIndex(childPath, false) {
			hash, err := HashFile(childPath)
			if err != nil {
				result.Errors = append(result.Errors, ScanError{Path: childPath, Err: err})
				continue
			}
			fileEntry.ContentHash = hash
		}

		entry.Children = append(entry.Children, fileEntry)
	}

	return entry
}

// IndexableFiles returns the file entries eligible for indexing: those
// with a computed content hash (filter-accepted).
func (r *Result) IndexableFiles() []*types.DirectoryEntry {
	var files []*types.DirectoryEntry
	for _, f := range r.Root.Files() {
		if f.ContentHash != "" {
			files = append(files, f)
		}
	}
	return files
}

// IgnoredCount returns the number of scanned files the filter
// rejected.
func (r *Result) IgnoredCount() int {
	count := 0
	for _, f := range r.Root.Files() {
		if f.ContentHash == "" {
			count++
		}
	}
	return count
}

// HashFile computes the hex-encoded SHA-256 of a file using fixed-size
// buffered reads, so large files never load fully into memory.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
