package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semidx/semidx/pkg/types"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s := New(root, filepath.Join(root, ".index"))
	require.NoError(t, s.EnsureLayout())
	return s, root
}

func sampleMetadata(relPath string) *types.FileMetadata {
	return &types.FileMetadata{
		MetadataVersion: types.CurrentMetadataVersion,
		Name:            filepath.Base(relPath),
		Path:            relPath,
		Hash:            "deadbeef",
		Size:            42,
		Extension:       ".go",
		ModTime:         time.Now().Truncate(time.Second),
		Description:     "File: " + filepath.Base(relPath),
		Chunks:          []types.Chunk{{Text: "package x", Type: types.ChunkFile, StartLine: 1, EndLine: 1}},
		Embeddings:      [][]float32{{0.1, 0.2, 0.3}},
		IndexedAt:       time.Now(),
	}
}

func TestSafeNameCollisionFree(t *testing.T) {
	s, root := newTestStore(t)

	a := s.SafeName(filepath.Join(root, "src/main.go"))
	b := s.SafeName(filepath.Join(root, "src_main.go"))
	c := s.SafeName(filepath.Join(root, "src", "main.go"))

	assert.True(t, strings.HasPrefix(a, "src_main_go-"))
	assert.Equal(t, a, c, "same file, same name")
	assert.NotEqual(t, a, b, "paths that sanitize alike must not collide")
	assert.NotContains(t, a, "/")
}

func TestMetadataRoundTrip(t *testing.T) {
	s, root := newTestStore(t)
	abs := filepath.Join(root, "pkg", "a.go")

	meta := sampleMetadata("pkg/a.go")
	require.NoError(t, s.WriteMetadata(abs, meta))

	loaded, err := s.ReadMetadata(abs)
	require.NoError(t, err)
	assert.Equal(t, meta.Path, loaded.Path)
	assert.Equal(t, meta.Hash, loaded.Hash)
	assert.Len(t, loaded.Embeddings, 1)
}

func TestReadMetadataNotFound(t *testing.T) {
	s, root := newTestStore(t)
	_, err := s.ReadMetadata(filepath.Join(root, "missing.go"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteMetadataRejectsInvariantViolation(t *testing.T) {
	s, root := newTestStore(t)
	meta := sampleMetadata("a.go")
	meta.Embeddings = nil // one vector per chunk required

	err := s.WriteMetadata(filepath.Join(root, "a.go"), meta)
	assert.Error(t, err)
}

func TestV1RecordMigratedOnLoad(t *testing.T) {
	s, root := newTestStore(t)
	abs := filepath.Join(root, "old.go")

	// Hand-write a v1 record: no version field, no analysis block.
	v1 := map[string]any{
		"name":         "old.go",
		"path":         "old.go",
		"hash":         "cafe",
		"size":         1,
		"extension":    ".go",
		"modifiedTime": time.Now().Format(time.RFC3339),
		"description":  "File: old.go",
		"chunks":       []any{},
		"embeddings":   []any{},
	}
	data, err := json.Marshal(v1)
	require.NoError(t, err)
	name := s.SafeName(abs) + ".json"
	require.NoError(t, os.WriteFile(filepath.Join(s.IndexRoot(), MetadataDir, name), data, 0o644))

	loaded, err := s.ReadMetadata(abs)
	require.NoError(t, err)
	assert.Equal(t, types.CurrentMetadataVersion, loaded.MetadataVersion)
	assert.Nil(t, loaded.Analysis)
}

func TestEmbeddingRecordRoundTrip(t *testing.T) {
	s, root := newTestStore(t)
	abs := filepath.Join(root, "b.go")

	rec := &types.EmbeddingRecord{
		Path:       "b.go",
		Chunks:     []types.Chunk{{Text: "func b() {}", Type: types.ChunkFunction, StartLine: 1, EndLine: 1}},
		Embeddings: [][]float32{{1, 0, 0}},
		Meta:       types.RecordMeta{ContentHash: "beef", ChunkCount: 1, Dimension: 3, IndexedAt: time.Now()},
	}
	require.NoError(t, s.WriteEmbeddingRecord(abs, rec))

	loaded, err := s.ReadEmbeddingRecord(abs)
	require.NoError(t, err)
	assert.Equal(t, rec.Path, loaded.Path)
	assert.Equal(t, rec.Meta.ContentHash, loaded.Meta.ContentHash)
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s, root := newTestStore(t)
	abs := filepath.Join(root, "c.go")
	require.NoError(t, s.WriteMetadata(abs, sampleMetadata("c.go")))

	entries, err := os.ReadDir(filepath.Join(s.IndexRoot(), MetadataDir))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestDeleteArtifacts(t *testing.T) {
	s, root := newTestStore(t)
	abs := filepath.Join(root, "d.go")

	require.NoError(t, s.WriteMetadata(abs, sampleMetadata("d.go")))
	require.NoError(t, s.WriteDescription(abs, "a description"))
	require.NoError(t, s.WriteEmbeddingRecord(abs, &types.EmbeddingRecord{
		Path:       "d.go",
		Chunks:     []types.Chunk{{Text: "x", StartLine: 1, EndLine: 1}},
		Embeddings: [][]float32{{0}},
	}))

	require.NoError(t, s.DeleteArtifacts(abs))

	_, err := s.ReadMetadata(abs)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ReadEmbeddingRecord(abs)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ReadDescription(abs)
	assert.ErrorIs(t, err, ErrNotFound)

	// Idempotent.
	assert.NoError(t, s.DeleteArtifacts(abs))
}

func TestLoadCache(t *testing.T) {
	s, root := newTestStore(t)
	require.NoError(t, s.WriteMetadata(filepath.Join(root, "a.go"), sampleMetadata("a.go")))
	require.NoError(t, s.WriteMetadata(filepath.Join(root, "b.go"), sampleMetadata("b.go")))

	cache, err := s.LoadCache()
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	entry, ok := cache.Get(filepath.Join(root, "a.go"))
	assert.True(t, ok)
	assert.Equal(t, "deadbeef", entry.ContentHash)
}

func TestHasEntries(t *testing.T) {
	s, root := newTestStore(t)
	assert.False(t, s.HasEntries())
	require.NoError(t, s.WriteMetadata(filepath.Join(root, "a.go"), sampleMetadata("a.go")))
	assert.True(t, s.HasEntries())
}

func TestWalkEmbeddingRecords(t *testing.T) {
	s, root := newTestStore(t)
	for _, name := range []string{"a.go", "b.go"} {
		require.NoError(t, s.WriteEmbeddingRecord(filepath.Join(root, name), &types.EmbeddingRecord{
			Path:       name,
			Chunks:     []types.Chunk{{Text: name, StartLine: 1, EndLine: 1}},
			Embeddings: [][]float32{{1}},
		}))
	}

	var seen []string
	err := s.WalkEmbeddingRecords(func(rec *types.EmbeddingRecord) error {
		seen = append(seen, rec.Path)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}
