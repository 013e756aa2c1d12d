// Package chunker splits file text into logical chunks for embedding.
//
// Languages with a registered tree-sitter grammar are split at
// function/class boundaries with original line numbers preserved;
// everything else becomes a single whole-file chunk. Units longer than
// the line cap are split at fixed windows without overlap. Chunk
// boundaries are deterministic for identical input, which is what lets
// repeated runs over unchanged content skip re-embedding.
//
// The same parse also extracts declaration signatures (name, kind,
// first line, line number) for the metadata record.
package chunker
