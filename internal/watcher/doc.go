// Package watcher keeps an index current between runs by reindexing
// files as they change on disk. Events are debounced per path so
// editor write bursts collapse into one reindex; removed files are
// dropped from the index immediately.
package watcher
