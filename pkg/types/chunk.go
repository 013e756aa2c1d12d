package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ChunkType describes the kind of logical unit a chunk covers.
type ChunkType string

const (
	ChunkFunction ChunkType = "function"
	ChunkMethod   ChunkType = "method"
	ChunkClass    ChunkType = "class"
	ChunkTypeDecl ChunkType = "type"
	ChunkFile     ChunkType = "file"
)

// Chunk is a contiguous slice of a file's text treated as one
// embeddable unit. Chunks of one file are non-overlapping and ordered
// by line; identical input always yields byte-identical chunks so
// repeated runs over unchanged content can skip re-embedding.
type Chunk struct {
	// Text is the chunk content exactly as it appears in the file.
	Text string `json:"text"`
	// Name is the symbol name when the chunk maps to one (may be empty).
	Name string `json:"name,omitempty"`
	// Type classifies the chunk.
	Type ChunkType `json:"type"`
	// StartLine and EndLine are 1-based, inclusive original line numbers.
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// Validate checks the chunk's structural invariants.
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("chunk line numbers must be positive")
	}
	if c.StartLine > c.EndLine {
		return errors.New("chunk start line must not exceed end line")
	}
	return nil
}

// Hash returns the hex-encoded SHA-256 of the chunk text, used as the
// embedding cache key.
func (c *Chunk) Hash() string {
	sum := sha256.Sum256([]byte(c.Text))
	return hex.EncodeToString(sum[:])
}
