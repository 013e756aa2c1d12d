// Package metadata holds the in-memory cache of last-indexed file
// state (content hash and modification time per path). The cache is
// rebuilt from the persisted index at startup and is the change
// detector's source of truth.
package metadata
