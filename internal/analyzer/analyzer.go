package analyzer

import (
	"strings"

	"github.com/semidx/semidx/pkg/types"
)

// Analyzer is the capability interface for language-specific enhanced
// analysis. Implementations are held in a fixed ordered list; the
// first one accepting a path wins.
type Analyzer interface {
	// CanAnalyze reports whether this analyzer handles the file.
	CanAnalyze(path string) bool
	// Analyze extracts enhanced information from the file content.
	Analyze(path string, content []byte) (*types.AnalysisResult, error)
}

// Chain is an ordered list of analyzers with a catch-all fallback.
type Chain struct {
	analyzers []Analyzer
}

// NewChain builds the default analyzer chain: Go AST analysis, then
// regex-based script analysis, then the generic fallback (which
// accepts everything).
func NewChain() *Chain {
	return &Chain{
		analyzers: []Analyzer{
			NewGoAnalyzer(),
			NewScriptAnalyzer(),
			NewFallbackAnalyzer(),
		},
	}
}

// Analyze runs the first matching analyzer. The fallback accepts every
// path, so a result is always produced for readable content.
func (c *Chain) Analyze(path string, content []byte) (*types.AnalysisResult, error) {
	for _, a := range c.analyzers {
		if a.CanAnalyze(path) {
			return a.Analyze(path, content)
		}
	}
	return &types.AnalysisResult{}, nil
}

// countLines counts non-blank lines, skipping lines that are only a
// line comment for the given markers.
func countLines(content []byte, commentMarkers ...string) int {
	count := 0
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		comment := false
		for _, marker := range commentMarkers {
			if strings.HasPrefix(trimmed, marker) {
				comment = true
				break
			}
		}
		if !comment {
			count++
		}
	}
	return count
}
