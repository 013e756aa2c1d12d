package metadata

import (
	"sync"
	"time"
)

// Entry is the last known indexed state of one file.
type Entry struct {
	// ContentHash is the hex-encoded SHA-256 of the file at index time.
	ContentHash string
	// ModTime is the file's modification time at index time.
	ModTime time.Time
}

// Cache maps absolute file paths to their last indexed state. It is
// owned by the orchestrator and shared with every worker, so all
// access is mutex-guarded. Entries are written only after a file
// completes the full pipeline and removed when the file is deleted or
// excluded.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get returns the entry for a path.
func (c *Cache) Get(path string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[path]
	return e, ok
}

// Set records the indexed state for a path.
func (c *Cache) Set(path string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = e
}

// Delete removes the entry for a path, if present.
func (c *Cache) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Paths returns all cached paths. The slice is a copy.
func (c *Cache) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	return paths
}

// Snapshot returns a copy of the full map, for read-only iteration
// without holding the lock.
func (c *Cache) Snapshot() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := make(map[string]Entry, len(c.entries))
	for p, e := range c.entries {
		snap[p] = e
	}
	return snap
}

// Clear removes every entry. Used by force reindex.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}
