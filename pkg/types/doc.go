// Package types defines the shared data model for the indexing engine:
// scan tree entries, chunks, signatures, persisted file metadata, and
// embedding records.
//
// Records persisted to disk (FileMetadata, EmbeddingRecord) carry an
// explicit version and are migrated at load time; in-memory types
// (DirectoryEntry) live only for the duration of one scan.
package types
