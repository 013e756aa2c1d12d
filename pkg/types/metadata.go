package types

import (
	"fmt"
	"time"
)

// Metadata record versions. Version 1 records predate enhanced
// analysis; loading one upgrades it to the current version with the
// analysis block left empty.
const (
	MetadataVersion1       = 1
	MetadataVersion2       = 2
	CurrentMetadataVersion = MetadataVersion2
)

// AnalysisResult holds the optional enhanced analysis for a file.
type AnalysisResult struct {
	// Language is the detected language name (e.g. "go", "python").
	Language string `json:"language,omitempty"`
	// Complexity is a rough decision-point count across the file.
	Complexity int `json:"complexity,omitempty"`
	// LinesOfCode counts non-blank, non-comment-only lines.
	LinesOfCode int `json:"linesOfCode,omitempty"`
	// Functions and Classes list declared symbol names.
	Functions []string `json:"functions,omitempty"`
	Classes   []string `json:"classes,omitempty"`
	// Imports lists imported modules/packages.
	Imports []string `json:"imports,omitempty"`
	// Dependencies lists project-relative files this file depends on.
	Dependencies []string `json:"dependencies,omitempty"`
}

// FileMetadata is the full persisted indexing result for one file.
// After a successful write its Hash and ModTime match the metadata
// cache entry for the same path.
type FileMetadata struct {
	MetadataVersion int `json:"metadataVersion"`

	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Hash      string    `json:"hash"`
	Size      int64     `json:"size"`
	Extension string    `json:"extension"`
	ModTime   time.Time `json:"modifiedTime"`

	Description string      `json:"description"`
	Signatures  []Signature `json:"signatures,omitempty"`

	Chunks     []Chunk     `json:"chunks"`
	Embeddings [][]float32 `json:"embeddings"`

	// Analysis is present only on version 2 records.
	Analysis *AnalysisResult `json:"analysis,omitempty"`

	IndexedAt time.Time `json:"indexedAt"`
}

// Validate checks the record's cross-field invariants.
func (m *FileMetadata) Validate() error {
	if m.Path == "" {
		return fmt.Errorf("file metadata missing path")
	}
	if m.Hash == "" {
		return fmt.Errorf("file metadata for %s missing content hash", m.Path)
	}
	if len(m.Embeddings) != len(m.Chunks) {
		return fmt.Errorf("file metadata for %s has %d embeddings for %d chunks",
			m.Path, len(m.Embeddings), len(m.Chunks))
	}
	return nil
}

// Migrate upgrades older record versions in place. It is called once
// at load time so the rest of the engine only ever sees current
// records.
func (m *FileMetadata) Migrate() {
	switch m.MetadataVersion {
	case 0, MetadataVersion1:
		// v1 records carried no analysis block and no version field.
		m.MetadataVersion = CurrentMetadataVersion
	case CurrentMetadataVersion:
	default:
		// Future versions are left untouched; the engine rewrites the
		// record on the next reindex of the file.
	}
}
