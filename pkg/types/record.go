package types

import (
	"fmt"
	"time"
)

// RecordMeta is the metadata block persisted alongside a file's
// chunks and vectors.
type RecordMeta struct {
	ContentHash string    `json:"contentHash"`
	ChunkCount  int       `json:"chunkCount"`
	Dimension   int       `json:"dimension"`
	Language    string    `json:"language,omitempty"`
	IndexedAt   time.Time `json:"indexedAt"`
}

// EmbeddingRecord is the persisted chunks+vectors document for one
// indexed file, one JSON file per source file under embeddings/. The
// similarity search loads every record into memory on an explicit
// load.
type EmbeddingRecord struct {
	// Path is the file's project-relative path.
	Path       string      `json:"path"`
	Chunks     []Chunk     `json:"chunks"`
	Embeddings [][]float32 `json:"embeddings"`
	Meta       RecordMeta  `json:"metadata"`
}

// Validate checks the record's invariants.
func (r *EmbeddingRecord) Validate() error {
	if r.Path == "" {
		return fmt.Errorf("embedding record missing path")
	}
	if len(r.Embeddings) != len(r.Chunks) {
		return fmt.Errorf("embedding record for %s has %d vectors for %d chunks",
			r.Path, len(r.Embeddings), len(r.Chunks))
	}
	return nil
}
