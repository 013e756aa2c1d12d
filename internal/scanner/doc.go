// Package scanner walks a project tree in a single depth-first pass,
// producing a DirectoryEntry tree. Exclusion decisions are delegated
// to pathfilter during the walk; content hashes are computed only for
// accepted files. A failed read records the path and continues rather
// than aborting the walk.
package scanner
