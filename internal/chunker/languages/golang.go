package languages

import (
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/semidx/semidx/internal/chunker"
	"github.com/semidx/semidx/pkg/types"
)

// RegisterGo adds the Go grammar to the registry.
func RegisterGo(r *chunker.Registry) {
	r.Register(&chunker.LanguageSpec{
		Name:     "go",
		Language: golang.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @chunk
			(method_declaration name: (field_identifier) @name) @chunk
			(type_declaration (type_spec name: (type_identifier) @name)) @chunk
		`,
		Extensions: []string{"go"},
		Kinds: map[string]types.ChunkType{
			"function_declaration": types.ChunkFunction,
			"method_declaration":   types.ChunkMethod,
			"type_declaration":     types.ChunkTypeDecl,
		},
	})
}
