package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semidx/semidx/internal/embedder"
	"github.com/semidx/semidx/internal/store"
	"github.com/semidx/semidx/pkg/types"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	root := t.TempDir()
	st := store.New(root, filepath.Join(root, ".index"))
	require.NoError(t, st.EnsureLayout())
	return st
}

func writeRecord(t *testing.T, st *store.Store, relPath string, vectors [][]float32) {
	t.Helper()

	chunks := make([]types.Chunk, len(vectors))
	for i := range vectors {
		chunks[i] = types.Chunk{
			Text:      "chunk",
			Name:      relPath,
			Type:      types.ChunkFile,
			StartLine: i*10 + 1,
			EndLine:   i*10 + 5,
		}
	}

	rec := &types.EmbeddingRecord{
		Path:       relPath,
		Chunks:     chunks,
		Embeddings: vectors,
		Meta: types.RecordMeta{
			ContentHash: "hash-" + relPath,
			ChunkCount:  len(chunks),
			Dimension:   len(vectors[0]),
			IndexedAt:   time.Now(),
		},
	}
	require.NoError(t, st.WriteEmbeddingRecord(st.AbsPath(relPath), rec))
}

func TestLoadBuildsSnapshot(t *testing.T) {
	st := newTestStore(t)
	writeRecord(t, st, "a.go", [][]float32{{1, 0, 0}})
	writeRecord(t, st, "b.go", [][]float32{{0, 1, 0}, {0, 0, 1}})

	idx := NewIndex(st, nil)
	assert.Equal(t, 0, idx.Len())

	require.NoError(t, idx.Load())
	assert.Equal(t, 2, idx.Len())
}

func TestFindSimilarFilesRanking(t *testing.T) {
	st := newTestStore(t)
	writeRecord(t, st, "exact.go", [][]float32{{1, 0, 0}})
	writeRecord(t, st, "close.go", [][]float32{{0.9, 0.1, 0}})
	writeRecord(t, st, "far.go", [][]float32{{0, 0, 1}})

	idx := NewIndex(st, nil)
	require.NoError(t, idx.Load())

	results := idx.FindSimilarFiles([]float32{1, 0, 0}, 10)
	require.Len(t, results, 3)

	assert.Equal(t, "exact.go", results[0].Path)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "close.go", results[1].Path)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score,
			"scores must be non-increasing")
	}
}

func TestFindSimilarFilesUsesMaxChunkScore(t *testing.T) {
	st := newTestStore(t)
	// Second chunk is the best match; the file must score by it.
	writeRecord(t, st, "multi.go", [][]float32{{0, 1, 0}, {1, 0, 0}})

	idx := NewIndex(st, nil)
	require.NoError(t, idx.Load())

	results := idx.FindSimilarFiles([]float32{1, 0, 0}, 10)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, 11, results[0].BestChunk.StartLine)
}

func TestFindSimilarFilesTieBreaksByPath(t *testing.T) {
	st := newTestStore(t)
	writeRecord(t, st, "zebra.go", [][]float32{{1, 0, 0}})
	writeRecord(t, st, "alpha.go", [][]float32{{1, 0, 0}})

	idx := NewIndex(st, nil)
	require.NoError(t, idx.Load())

	results := idx.FindSimilarFiles([]float32{1, 0, 0}, 10)
	require.Len(t, results, 2)
	assert.Equal(t, "alpha.go", results[0].Path)
	assert.Equal(t, "zebra.go", results[1].Path)
}

func TestFindSimilarFilesHonorsLimit(t *testing.T) {
	st := newTestStore(t)
	writeRecord(t, st, "a.go", [][]float32{{1, 0, 0}})
	writeRecord(t, st, "b.go", [][]float32{{0.9, 0.1, 0}})
	writeRecord(t, st, "c.go", [][]float32{{0.8, 0.2, 0}})

	idx := NewIndex(st, nil)
	require.NoError(t, idx.Load())

	results := idx.FindSimilarFiles([]float32{1, 0, 0}, 2)
	assert.Len(t, results, 2)
}

func TestFindSimilarFilesSkipsDimensionMismatch(t *testing.T) {
	st := newTestStore(t)
	writeRecord(t, st, "good.go", [][]float32{{1, 0, 0}})
	writeRecord(t, st, "stale.go", [][]float32{{1, 0}})

	idx := NewIndex(st, nil)
	require.NoError(t, idx.Load())

	results := idx.FindSimilarFiles([]float32{1, 0, 0}, 10)
	require.Len(t, results, 1)
	assert.Equal(t, "good.go", results[0].Path)
}

func TestLoadReplacesSnapshot(t *testing.T) {
	st := newTestStore(t)
	writeRecord(t, st, "old.go", [][]float32{{1, 0, 0}})

	idx := NewIndex(st, nil)
	require.NoError(t, idx.Load())
	require.Equal(t, 1, idx.Len())

	require.NoError(t, st.DeleteArtifacts(st.AbsPath("old.go")))
	writeRecord(t, st, "new.go", [][]float32{{0, 1, 0}})

	require.NoError(t, idx.Load())
	assert.Equal(t, 1, idx.Len())

	results := idx.FindSimilarFiles([]float32{0, 1, 0}, 10)
	require.Len(t, results, 1)
	assert.Equal(t, "new.go", results[0].Path)
}

func TestLoadEmptyStore(t *testing.T) {
	st := newTestStore(t)
	idx := NewIndex(st, nil)
	require.NoError(t, idx.Load())
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.FindSimilarFiles([]float32{1, 0, 0}, 10))
}

func TestSearchEmbedsQuery(t *testing.T) {
	st := newTestStore(t)
	provider := embedder.NewLocalProvider()

	// Index a record whose vector is the provider's own embedding, so
	// the identical query text must rank it first with score 1.
	vec, err := provider.GenerateEmbedding(context.Background(), "open a file")
	require.NoError(t, err)
	writeRecord(t, st, "fileops.go", [][]float32{vec})

	other, err := provider.GenerateEmbedding(context.Background(), "unrelated")
	require.NoError(t, err)
	writeRecord(t, st, "other.go", [][]float32{other})

	idx := NewIndex(st, provider)
	require.NoError(t, idx.Load())

	results, err := idx.Search(context.Background(), "open a file", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "fileops.go", results[0].Path)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	idx := NewIndex(newTestStore(t), embedder.NewLocalProvider())
	_, err := idx.Search(context.Background(), "", 5)
	assert.Error(t, err)
}

// countingProvider counts embedding calls to observe cache hits.
type countingProvider struct {
	embedder.LocalProvider
	calls int
}

func (c *countingProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.LocalProvider.GenerateEmbedding(ctx, text)
}

func TestSearchCachesResults(t *testing.T) {
	st := newTestStore(t)
	provider := &countingProvider{}

	vec, err := provider.GenerateEmbedding(context.Background(), "query text")
	require.NoError(t, err)
	provider.calls = 0
	writeRecord(t, st, "a.go", [][]float32{vec})

	idx := NewIndex(st, provider)
	require.NoError(t, idx.Load())

	first, err := idx.Search(context.Background(), "query text", 5)
	require.NoError(t, err)
	second, err := idx.Search(context.Background(), "query text", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "second search must hit the query cache")

	// Reload purges the cache.
	require.NoError(t, idx.Load())
	_, err = idx.Search(context.Background(), "query text", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, cosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestLoadSkipsCorruptRecords(t *testing.T) {
	st := newTestStore(t)
	writeRecord(t, st, "good.go", [][]float32{{1, 0, 0}})
	require.NoError(t, os.WriteFile(
		filepath.Join(st.EmbeddingsPath(), "corrupt.json"), []byte("{not json"), 0o644))

	idx := NewIndex(st, nil)
	require.NoError(t, idx.Load())
	assert.Equal(t, 1, idx.Len())
}
