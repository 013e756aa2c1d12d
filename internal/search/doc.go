// Package search answers similarity queries against the persisted
// embedding records.
//
// Records are loaded eagerly into an immutable in-memory snapshot;
// concurrent queries read the snapshot lock-free, and an explicit
// reload builds a complete replacement before atomically swapping it
// in. Files are ranked by the maximum cosine similarity across their
// chunk vectors, with deterministic path tie-breaking. Query results
// are cached in an LRU with a TTL, purged on reload.
package search
