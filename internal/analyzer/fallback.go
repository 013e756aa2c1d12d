package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/semidx/semidx/pkg/types"
)

// extLanguages maps extensions to language names for files no
// dedicated analyzer handles.
var extLanguages = map[string]string{
	".java": "java", ".c": "c", ".h": "c", ".cpp": "cpp", ".hpp": "cpp",
	".cs": "csharp", ".rb": "ruby", ".rs": "rust", ".php": "php",
	".swift": "swift", ".kt": "kotlin", ".scala": "scala",
	".sh": "shell", ".bash": "shell",
	".html": "html", ".css": "css", ".scss": "css",
	".json": "json", ".yaml": "yaml", ".yml": "yaml", ".toml": "toml",
	".xml": "xml", ".sql": "sql", ".md": "markdown", ".txt": "text",
}

// FallbackAnalyzer accepts every path and reports only language (when
// the extension is recognized) and line count.
type FallbackAnalyzer struct{}

// NewFallbackAnalyzer creates the catch-all analyzer.
func NewFallbackAnalyzer() *FallbackAnalyzer {
	return &FallbackAnalyzer{}
}

// CanAnalyze always returns true; the fallback terminates the chain.
func (a *FallbackAnalyzer) CanAnalyze(string) bool { return true }

// Analyze reports language and lines of code.
func (a *FallbackAnalyzer) Analyze(path string, content []byte) (*types.AnalysisResult, error) {
	return &types.AnalysisResult{
		Language:    extLanguages[strings.ToLower(filepath.Ext(path))],
		LinesOfCode: countLines(content),
	}, nil
}
