package types

import "time"

// EntryType distinguishes files from directories in a scan tree.
type EntryType string

const (
	EntryFile EntryType = "file"
	EntryDir  EntryType = "dir"
)

// DirectoryEntry is one filesystem node observed during a scan.
// Entries are built once per scan and discarded afterwards; the
// persisted index never stores them directly.
type DirectoryEntry struct {
	// Path is the absolute, canonical path of the node.
	Path string
	// Name is the base name of the node.
	Name string
	// Type is EntryFile or EntryDir.
	Type EntryType
	// Size is the file size in bytes (0 for directories).
	Size int64
	// Extension is the lowercased extension including the dot (files only).
	Extension string
	// ModTime is the node's last modification time.
	ModTime time.Time
	// ContentHash is the hex-encoded SHA-256 of the file content.
	// It is computed lazily and only for files accepted by the path
	// filter, so excluded binaries stay cheap to skip.
	ContentHash string
	// Children holds child entries for directories, ordered by name.
	Children []*DirectoryEntry
}

// IsFile reports whether the entry is a regular file.
func (e *DirectoryEntry) IsFile() bool {
	return e.Type == EntryFile
}

// Walk visits the entry and all descendants depth-first.
func (e *DirectoryEntry) Walk(fn func(*DirectoryEntry)) {
	fn(e)
	for _, child := range e.Children {
		child.Walk(fn)
	}
}

// Files returns every file entry in the tree, depth-first.
func (e *DirectoryEntry) Files() []*DirectoryEntry {
	var files []*DirectoryEntry
	e.Walk(func(node *DirectoryEntry) {
		if node.IsFile() {
			files = append(files, node)
		}
	})
	return files
}
