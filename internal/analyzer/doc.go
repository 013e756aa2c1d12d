// Package analyzer provides optional enhanced analysis of source
// files: language detection, a rough complexity score, lines of code,
// and declared functions/classes/imports.
//
// Analyzers implement a small capability interface (CanAnalyze,
// Analyze) and are tried in a fixed order; the first match wins. Go
// files get real AST analysis, common script languages get regex
// extraction, and a catch-all fallback covers the rest. Analysis
// failures never fail a file's indexing; the orchestrator treats this
// stage as best-effort.
package analyzer
