// Package languages registers tree-sitter grammars with the chunker
// registry. Each language contributes a grammar, a query capturing its
// top-level units, and a node-type to chunk-type mapping.
package languages

import "github.com/semidx/semidx/internal/chunker"

// DefaultRegistry returns a registry with every supported language
// registered. Files outside these languages fall back to whole-file
// chunking.
func DefaultRegistry() *chunker.Registry {
	r := chunker.NewRegistry()
	RegisterGo(r)
	RegisterPython(r)
	RegisterJavaScript(r)
	RegisterTypeScript(r)
	return r
}
