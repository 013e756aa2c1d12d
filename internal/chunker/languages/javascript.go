package languages

import (
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/semidx/semidx/internal/chunker"
	"github.com/semidx/semidx/pkg/types"
)

// RegisterJavaScript adds the JavaScript grammar to the registry.
func RegisterJavaScript(r *chunker.Registry) {
	r.Register(&chunker.LanguageSpec{
		Name:     "javascript",
		Language: javascript.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @chunk
			(class_declaration name: (identifier) @name) @chunk
			(method_definition name: (property_identifier) @name) @chunk
			(export_statement (function_declaration name: (identifier) @name)) @chunk
			(export_statement (class_declaration name: (identifier) @name)) @chunk
			(lexical_declaration (variable_declarator name: (identifier) @name value: (arrow_function))) @chunk
		`,
		Extensions: []string{"js", "jsx", "mjs", "cjs"},
		Kinds: map[string]types.ChunkType{
			"function_declaration": types.ChunkFunction,
			"class_declaration":    types.ChunkClass,
			"method_definition":    types.ChunkMethod,
			"export_statement":     types.ChunkFunction,
			"lexical_declaration":  types.ChunkFunction,
		},
	})
}
