package types

// SignatureKind classifies an extracted declaration.
type SignatureKind string

const (
	SigFunction  SignatureKind = "function"
	SigMethod    SignatureKind = "method"
	SigClass     SignatureKind = "class"
	SigType      SignatureKind = "type"
	SigInterface SignatureKind = "interface"
)

// Signature is one extracted function/class declaration. Signatures are
// derived during indexing and persisted only inside FileMetadata.
type Signature struct {
	Name string        `json:"name"`
	Kind SignatureKind `json:"kind"`
	// Signature is the declaration's first line, trimmed.
	Signature string `json:"signature"`
	// Line is the 1-based line of the declaration.
	Line int `json:"line"`
}
