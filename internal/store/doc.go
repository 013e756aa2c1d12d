// Package store persists indexing artifacts to the on-disk index.
//
// Layout under the index root:
//
//	metadata/<safe>.json      full FileMetadata per source file
//	embeddings/<safe>.json    EmbeddingRecord per source file
//	descriptions/<safe>.txt   generated description per source file
//	logs/                     run logs (written by runlog)
//
// <safe> is the source file's project-relative path with all non-word
// characters replaced by underscores plus a short hash of the original
// path, giving a collision-free, filesystem-safe name. JSON artifacts
// are written to a temp file and
// renamed into place so crashed runs never leave partial records.
package store
