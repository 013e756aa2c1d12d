package metadata

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheBasicOperations(t *testing.T) {
	c := NewCache()
	now := time.Now()

	c.Set("/p/a.go", Entry{ContentHash: "h1", ModTime: now})
	e, ok := c.Get("/p/a.go")
	assert.True(t, ok)
	assert.Equal(t, "h1", e.ContentHash)
	assert.Equal(t, 1, c.Len())

	c.Delete("/p/a.go")
	_, ok = c.Get("/p/a.go")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCacheClear(t *testing.T) {
	c := NewCache()
	c.Set("/a", Entry{ContentHash: "1"})
	c.Set("/b", Entry{ContentHash: "2"})
	c.Clear()
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Paths())
}

func TestCacheSnapshotIsCopy(t *testing.T) {
	c := NewCache()
	c.Set("/a", Entry{ContentHash: "1"})

	snap := c.Snapshot()
	snap["/b"] = Entry{ContentHash: "2"}

	assert.Equal(t, 1, c.Len(), "mutating a snapshot must not affect the cache")
}

func TestCacheConcurrentWriters(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				path := fmt.Sprintf("/p/file%d.go", n)
				c.Set(path, Entry{ContentHash: fmt.Sprintf("h%d", j)})
				c.Get(path)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, c.Len())
}
