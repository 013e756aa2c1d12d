package chunker

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/semidx/semidx/pkg/types"
)

// LanguageSpec describes how one language is split into logical units.
type LanguageSpec struct {
	// Name is the language name ("go", "python", ...).
	Name string
	// Language is the tree-sitter grammar.
	Language *sitter.Language
	// Query is a tree-sitter S-expression query capturing top-level
	// units as @chunk and their identifier as @name.
	Query string
	// Extensions lists file extensions without the dot.
	Extensions []string
	// Kinds maps tree-sitter node types to chunk types; unmapped node
	// types default to ChunkFunction.
	Kinds map[string]types.ChunkType
}

// Registry resolves a file path to its language spec by extension.
// The set of registered languages is fixed at construction, so lookups
// need no locking.
type Registry struct {
	byExt  map[string]*LanguageSpec
	byName map[string]*LanguageSpec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt:  make(map[string]*LanguageSpec),
		byName: make(map[string]*LanguageSpec),
	}
}

// Register adds a language spec.
func (r *Registry) Register(spec *LanguageSpec) {
	r.byName[spec.Name] = spec
	for _, ext := range spec.Extensions {
		r.byExt[ext] = spec
	}
}

// Lookup returns the spec for a file path, or nil when no structural
// splitter is registered for its extension.
func (r *Registry) Lookup(path string) *LanguageSpec {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return r.byExt[ext]
}

// LanguageName returns the language for a path, or "" when unknown.
func (r *Registry) LanguageName(path string) string {
	if spec := r.Lookup(path); spec != nil {
		return spec.Name
	}
	return ""
}

// chunkKind resolves a tree-sitter node type to a chunk type.
func (s *LanguageSpec) chunkKind(nodeType string) types.ChunkType {
	if kind, ok := s.Kinds[nodeType]; ok {
		return kind
	}
	return types.ChunkFunction
}

// signatureKind maps a chunk type to the matching signature kind.
func signatureKind(ct types.ChunkType) types.SignatureKind {
	switch ct {
	case types.ChunkMethod:
		return types.SigMethod
	case types.ChunkClass:
		return types.SigClass
	case types.ChunkTypeDecl:
		return types.SigType
	default:
		return types.SigFunction
	}
}
