package analyzer

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/semidx/semidx/pkg/types"
)

// scriptLang bundles the per-language extraction patterns.
type scriptLang struct {
	name           string
	commentMarkers []string
	importRe       *regexp.Regexp
	functionRe     *regexp.Regexp
	classRe        *regexp.Regexp
	branchRe       *regexp.Regexp
}

var scriptLangs = map[string]*scriptLang{
	".py": {
		name:           "python",
		commentMarkers: []string{"#"},
		importRe:       regexp.MustCompile(`(?m)^\s*(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`),
		functionRe:     regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+(\w+)`),
		classRe:        regexp.MustCompile(`(?m)^\s*class\s+(\w+)`),
		branchRe:       regexp.MustCompile(`(?m)\b(if|elif|for|while|except|case)\b`),
	},
	".js": {
		name:           "javascript",
		commentMarkers: []string{"//"},
		importRe:       regexp.MustCompile(`(?m)(?:import\s+.*?from\s+|require\()\s*['"]([^'"]+)['"]`),
		functionRe:     regexp.MustCompile(`(?m)(?:function\s+(\w+)|(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s*)?(?:\([^)]*\)|\w+)\s*=>)`),
		classRe:        regexp.MustCompile(`(?m)\bclass\s+(\w+)`),
		branchRe:       regexp.MustCompile(`(?m)\b(if|for|while|switch|catch|case)\b`),
	},
	".ts": {
		name:           "typescript",
		commentMarkers: []string{"//"},
		importRe:       regexp.MustCompile(`(?m)(?:import\s+.*?from\s+|require\()\s*['"]([^'"]+)['"]`),
		functionRe:     regexp.MustCompile(`(?m)(?:function\s+(\w+)|(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s*)?(?:\([^)]*\)|\w+)\s*=>)`),
		classRe:        regexp.MustCompile(`(?m)\b(?:class|interface)\s+(\w+)`),
		branchRe:       regexp.MustCompile(`(?m)\b(if|for|while|switch|catch|case)\b`),
	},
}

func init() {
	// Extension aliases share their base language's patterns.
	scriptLangs[".pyi"] = scriptLangs[".py"]
	scriptLangs[".jsx"] = scriptLangs[".js"]
	scriptLangs[".mjs"] = scriptLangs[".js"]
	scriptLangs[".cjs"] = scriptLangs[".js"]
	scriptLangs[".tsx"] = scriptLangs[".ts"]
}

// ScriptAnalyzer analyzes Python/JavaScript/TypeScript sources with
// regex-based extraction. It is deliberately rough: the structural
// chunker owns precision, this only feeds the optional analysis block.
type ScriptAnalyzer struct{}

// NewScriptAnalyzer creates a script analyzer.
func NewScriptAnalyzer() *ScriptAnalyzer {
	return &ScriptAnalyzer{}
}

// CanAnalyze accepts known script extensions.
func (a *ScriptAnalyzer) CanAnalyze(path string) bool {
	_, ok := scriptLangs[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Analyze extracts imports, functions, classes, complexity, and LOC.
func (a *ScriptAnalyzer) Analyze(path string, content []byte) (*types.AnalysisResult, error) {
	lang := scriptLangs[strings.ToLower(filepath.Ext(path))]
	text := string(content)

	result := &types.AnalysisResult{
		Language:    lang.name,
		LinesOfCode: countLines(content, lang.commentMarkers...),
		Complexity:  len(lang.branchRe.FindAllString(text, -1)),
	}

	for _, m := range lang.importRe.FindAllStringSubmatch(text, -1) {
		imp := firstGroup(m)
		if imp == "" {
			continue
		}
		result.Imports = append(result.Imports, imp)
		// Relative imports point at sibling project files.
		if strings.HasPrefix(imp, ".") {
			result.Dependencies = append(result.Dependencies, imp)
		}
	}
	for _, m := range lang.functionRe.FindAllStringSubmatch(text, -1) {
		if name := firstGroup(m); name != "" {
			result.Functions = append(result.Functions, name)
		}
	}
	for _, m := range lang.classRe.FindAllStringSubmatch(text, -1) {
		if name := firstGroup(m); name != "" {
			result.Classes = append(result.Classes, name)
		}
	}

	return result, nil
}

// firstGroup returns the first non-empty capture group of a match.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
