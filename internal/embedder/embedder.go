package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors.
var (
	ErrEmptyText           = errors.New("text cannot be empty")
	ErrProviderFailed      = errors.New("provider failed")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Provider supplies the two external capabilities the indexing
// pipeline depends on. Both calls may be slow or fail; the caller owns
// the degradation policy (fallback description, skip file).
type Provider interface {
	// GenerateDescription produces a text description for a prompt.
	GenerateDescription(ctx context.Context, prompt string) (string, error)
	// GenerateEmbedding produces a fixed-length vector for a text.
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	// Dimension returns the embedding dimension.
	Dimension() int
	// Name returns the provider name.
	Name() string
	// Close releases any held resources.
	Close() error
}

// Cache is an in-memory LRU of embeddings keyed by content hash, so
// re-embedding an unchanged chunk within a process is free.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// DefaultCacheSize is the default number of cached embeddings.
const DefaultCacheSize = 10000

// NewCache creates an embedding cache with LRU eviction.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		// Only reachable with a non-positive size, which is corrected
		// above.
		cache, _ = lru.New[string, []float32](DefaultCacheSize)
	}
	return &Cache{cache: cache}
}

// Get returns a copy of the cached vector for a hash.
func (c *Cache) Get(hash string) ([]float32, bool) {
	vec, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// Set stores a vector; LRU eviction handles capacity.
func (c *Cache) Set(hash string, vec []float32) {
	c.cache.Add(hash, vec)
}

// Len returns the current cache size.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// HashText computes the hex-encoded SHA-256 cache key for a text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
