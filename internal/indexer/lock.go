package indexer

import "sync/atomic"

// runLock provides non-blocking lock semantics for serializing
// indexing runs; two concurrent runs over the same index would
// interleave artifact writes and cache updates.
type runLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// tryAcquire attempts to acquire the lock without blocking.
func (l *runLock) tryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// release releases the lock. Must only be called after a successful
// tryAcquire.
func (l *runLock) release() {
	l.state.Store(0)
}
