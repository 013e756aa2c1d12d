package languages

import (
	"github.com/smacker/go-tree-sitter/python"

	"github.com/semidx/semidx/internal/chunker"
	"github.com/semidx/semidx/pkg/types"
)

// RegisterPython adds the Python grammar to the registry.
func RegisterPython(r *chunker.Registry) {
	r.Register(&chunker.LanguageSpec{
		Name:     "python",
		Language: python.GetLanguage(),
		Query: `
			(function_definition name: (identifier) @name) @chunk
			(class_definition name: (identifier) @name) @chunk
			(decorated_definition definition: (function_definition name: (identifier) @name)) @chunk
			(decorated_definition definition: (class_definition name: (identifier) @name)) @chunk
		`,
		Extensions: []string{"py", "pyi"},
		Kinds: map[string]types.ChunkType{
			"function_definition":  types.ChunkFunction,
			"class_definition":     types.ChunkClass,
			"decorated_definition": types.ChunkFunction,
		},
	})
}
