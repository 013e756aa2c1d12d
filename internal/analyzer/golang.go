package analyzer

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/semidx/semidx/pkg/types"
)

// GoAnalyzer analyzes Go sources with the standard AST packages.
type GoAnalyzer struct{}

// NewGoAnalyzer creates a Go analyzer.
func NewGoAnalyzer() *GoAnalyzer {
	return &GoAnalyzer{}
}

// CanAnalyze accepts .go files.
func (a *GoAnalyzer) CanAnalyze(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".go")
}

// Analyze parses the file and extracts imports, declared functions and
// types, a decision-point complexity count, and lines of code. Syntax
// errors are non-fatal: whatever partial AST the parser produced is
// still mined.
func (a *GoAnalyzer) Analyze(path string, content []byte) (*types.AnalysisResult, error) {
	result := &types.AnalysisResult{
		Language:    "go",
		LinesOfCode: countLines(content, "//"),
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, content, 0)
	if file == nil {
		// No AST at all; report what we have rather than failing the
		// pipeline stage.
		_ = err
		return result, nil
	}

	for _, imp := range file.Imports {
		result.Imports = append(result.Imports, strings.Trim(imp.Path.Value, `"`))
	}

	ast.Inspect(file, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.FuncDecl:
			name := n.Name.Name
			if n.Recv != nil && len(n.Recv.List) > 0 {
				name = receiverType(n.Recv.List[0].Type) + "." + name
			}
			result.Functions = append(result.Functions, name)
		case *ast.TypeSpec:
			result.Classes = append(result.Classes, n.Name.Name)
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.CaseClause,
			*ast.CommClause, *ast.SelectStmt:
			result.Complexity++
		}
		return true
	})

	return result, nil
}

// receiverType extracts the bare receiver type name from a method
// receiver expression.
func receiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverType(t.X)
	case *ast.IndexExpr:
		return receiverType(t.X)
	case *ast.IndexListExpr:
		return receiverType(t.X)
	default:
		return ""
	}
}
