// Package pathfilter decides which filesystem entries are eligible for
// indexing.
//
// A Filter rejects directories, anything under the index's own output
// directory, a configurable extension denylist, and paths matched by
// gitignore-style patterns (standard .gitignore semantics: last match
// wins, negation patterns re-include). Files passing those checks go
// through a binary/text heuristic on their first kilobyte: known
// binary magic bytes reject immediately, NUL bytes reject unless the
// extension is a known source type and the bytes still decode as
// UTF-8, and everything else is decided by decode success alone.
//
// Filters are pure: they never write and are safe for concurrent use.
package pathfilter
