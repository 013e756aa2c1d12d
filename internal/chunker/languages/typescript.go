package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/semidx/semidx/internal/chunker"
	"github.com/semidx/semidx/pkg/types"
)

const typescriptQuery = `
	(function_declaration name: (identifier) @name) @chunk
	(class_declaration name: (type_identifier) @name) @chunk
	(method_definition name: (property_identifier) @name) @chunk
	(export_statement (function_declaration name: (identifier) @name)) @chunk
	(export_statement (class_declaration name: (type_identifier) @name)) @chunk
	(lexical_declaration (variable_declarator name: (identifier) @name value: (arrow_function))) @chunk
	(interface_declaration name: (type_identifier) @name) @chunk
	(type_alias_declaration name: (type_identifier) @name) @chunk
`

var typescriptKinds = map[string]types.ChunkType{
	"function_declaration":   types.ChunkFunction,
	"class_declaration":      types.ChunkClass,
	"method_definition":      types.ChunkMethod,
	"export_statement":       types.ChunkFunction,
	"lexical_declaration":    types.ChunkFunction,
	"interface_declaration":  types.ChunkTypeDecl,
	"type_alias_declaration": types.ChunkTypeDecl,
}

// RegisterTypeScript adds the TypeScript grammars to the registry. JSX
// syntax is only valid under the tsx grammar, so .tsx files get their
// own spec; the query and chunk kinds are shared.
func RegisterTypeScript(r *chunker.Registry) {
	register := func(name string, lang *sitter.Language, exts ...string) {
		r.Register(&chunker.LanguageSpec{
			Name:       name,
			Language:   lang,
			Query:      typescriptQuery,
			Extensions: exts,
			Kinds:      typescriptKinds,
		})
	}
	register("typescript", typescript.GetLanguage(), "ts")
	register("tsx", tsx.GetLanguage(), "tsx")
}
