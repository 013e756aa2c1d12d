// Package cli wires the indexing engine into the semidx command:
// index, reindex, search, status, clean, watch and logs subcommands
// over one shared setup path (config, provider, indexer).
package cli
