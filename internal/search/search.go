package search

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/semidx/semidx/internal/embedder"
	"github.com/semidx/semidx/internal/store"
	"github.com/semidx/semidx/pkg/types"
)

// Query limits and cache sizing.
const (
	DefaultLimit   = 10
	MaxLimit       = 100
	QueryCacheSize = 1000
	QueryCacheTTL  = 1 * time.Hour
)

// Result is one ranked file from a similarity query.
type Result struct {
	Path      string
	Score     float64
	BestChunk types.Chunk
}

// fileEntry is one file's vectors in the in-memory index.
type fileEntry struct {
	path    string
	chunks  []types.Chunk
	vectors [][]float32
}

// snapshot is an immutable view of every loaded embedding record.
// Queries read whichever snapshot is current; Load builds a complete
// replacement and swaps it in, so a reload racing with queries never
// exposes a half-populated index.
type snapshot struct {
	files []fileEntry
}

// cacheEntry is a cached query result with its expiration time.
type cacheEntry struct {
	results   []Result
	expiresAt time.Time
}

// Index answers similarity queries against the persisted embedding
// records. Records are loaded into memory once via Load; reload is
// explicit, callers re-Load after an indexing run completes.
type Index struct {
	store    *store.Store
	provider embedder.Provider
	snap     atomic.Pointer[snapshot]

	cacheMu sync.Mutex
	cache   *lru.Cache[[32]byte, *cacheEntry]
}

// NewIndex creates an empty similarity index backed by the given store.
// The provider embeds query text; it may be nil if only
// FindSimilarFiles is used.
func NewIndex(st *store.Store, provider embedder.Provider) *Index {
	cache, err := lru.New[[32]byte, *cacheEntry](QueryCacheSize)
	if err != nil {
		panic(fmt.Sprintf("create query cache: %v", err))
	}

	idx := &Index{store: st, provider: provider, cache: cache}
	idx.snap.Store(&snapshot{})
	return idx
}

// Load reads every persisted embedding record into a fresh snapshot
// and swaps it in. The query cache is purged: cached rankings reflect
// the previous snapshot.
func (idx *Index) Load() error {
	snap := &snapshot{}
	err := idx.store.WalkEmbeddingRecords(func(rec *types.EmbeddingRecord) error {
		if len(rec.Embeddings) == 0 {
			return nil
		}
		snap.files = append(snap.files, fileEntry{
			path:    rec.Path,
			chunks:  rec.Chunks,
			vectors: rec.Embeddings,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("load embedding records: %w", err)
	}

	idx.snap.Store(snap)

	idx.cacheMu.Lock()
	idx.cache.Purge()
	idx.cacheMu.Unlock()
	return nil
}

// Len returns the number of files in the current snapshot.
func (idx *Index) Len() int {
	return len(idx.snap.Load().files)
}

// FindSimilarFiles ranks loaded files against the query vector. Each
// file scores as the maximum cosine similarity across its chunk
// vectors; results are sorted by descending score with ties broken by
// path. At most k results are returned.
func (idx *Index) FindSimilarFiles(queryVector []float32, k int) []Result {
	k = clampLimit(k)
	snap := idx.snap.Load()

	results := make([]Result, 0, len(snap.files))
	for _, file := range snap.files {
		best := -1
		bestScore := 0.0
		for i, vec := range file.vectors {
			if len(vec) != len(queryVector) {
				continue // dimension mismatch, skip
			}
			score := cosineSimilarity(queryVector, vec)
			if best < 0 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best < 0 {
			continue
		}
		r := Result{Path: file.path, Score: bestScore}
		if best < len(file.chunks) {
			r.BestChunk = file.chunks[best]
		}
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Search embeds the query text and ranks files against it. Results are
// cached per (query, limit) with a TTL; the cache is purged on Load.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if idx.provider == nil {
		return nil, fmt.Errorf("no embedding provider configured")
	}
	limit = clampLimit(limit)

	key := queryKey(query, limit)
	if cached, ok := idx.checkCache(key); ok {
		return cached, nil
	}

	vector, err := idx.provider.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := idx.FindSimilarFiles(vector, limit)
	idx.storeInCache(key, results)
	return results, nil
}

func (idx *Index) checkCache(key [32]byte) ([]Result, bool) {
	idx.cacheMu.Lock()
	defer idx.cacheMu.Unlock()

	entry, found := idx.cache.Get(key)
	if !found {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		idx.cache.Remove(key)
		return nil, false
	}

	out := make([]Result, len(entry.results))
	copy(out, entry.results)
	return out, true
}

func (idx *Index) storeInCache(key [32]byte, results []Result) {
	entry := &cacheEntry{
		results:   make([]Result, len(results)),
		expiresAt: time.Now().Add(QueryCacheTTL),
	}
	copy(entry.results, results)

	idx.cacheMu.Lock()
	idx.cache.Add(key, entry)
	idx.cacheMu.Unlock()
}

func queryKey(query string, limit int) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|%d", query, limit)))
}

func clampLimit(k int) int {
	if k <= 0 {
		return DefaultLimit
	}
	if k > MaxLimit {
		return MaxLimit
	}
	return k
}

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
