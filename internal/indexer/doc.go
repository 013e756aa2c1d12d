// Package indexer coordinates the indexing pipeline: scan the project
// tree, classify files against the metadata cache by content hash,
// fan the work list out across a bounded worker pool, and persist
// metadata, description and embedding artifacts per file.
//
// The cache is only updated for files that complete the whole
// pipeline, so a run can always report exactly which files succeeded.
// Description failures degrade to a fallback string; embedding
// failures fail just that file; only setup errors (an unwritable index
// directory, an unreadable root) abort a run. Every run appends an
// immutable record to the run log journal for the scan planner.
package indexer
