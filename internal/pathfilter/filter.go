package pathfilter

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	ignore "github.com/sabhiram/go-gitignore"
)

// sniffLen is how many leading bytes are inspected by the binary
// heuristic.
const sniffLen = 1024

// defaultDenyExts is the built-in extension denylist. Entries are
// lowercase and include the dot.
var defaultDenyExts = []string{
	".exe", ".dll", ".so", ".dylib", ".a", ".o", ".obj", ".bin",
	".zip", ".tar", ".gz", ".bz2", ".xz", ".7z", ".rar",
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".ico", ".webp", ".svgz",
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".mp3", ".mp4", ".avi", ".mov", ".mkv", ".wav", ".flac",
	".woff", ".woff2", ".ttf", ".otf", ".eot",
	".pyc", ".pyo", ".class", ".jar", ".war",
	".db", ".sqlite", ".sqlite3",
	".min.js", ".min.css",
}

// sourceExts are extensions that may legitimately contain stray NUL
// bytes (generated or mixed-encoding sources) and are still accepted
// when the content decodes as UTF-8.
var sourceExts = map[string]bool{
	".go": true, ".py": true, ".js": true, ".jsx": true, ".ts": true,
	".tsx": true, ".java": true, ".c": true, ".h": true, ".cpp": true,
	".hpp": true, ".cs": true, ".rb": true, ".rs": true, ".php": true,
	".swift": true, ".kt": true, ".scala": true, ".sh": true,
}

// binaryMagic holds well-known magic byte prefixes of binary formats.
var binaryMagic = [][]byte{
	{0x7f, 'E', 'L', 'F'},       // ELF
	{'M', 'Z'},                  // PE/COFF
	{0x89, 'P', 'N', 'G'},       // PNG
	{0xff, 0xd8, 0xff},          // JPEG
	{'G', 'I', 'F', '8'},        // GIF
	{'%', 'P', 'D', 'F'},        // PDF
	{'P', 'K', 0x03, 0x04},      // ZIP (also jar, docx, ...)
	{0x1f, 0x8b},                // gzip
	{0xca, 0xfe, 0xba, 0xbe},    // Java class / fat Mach-O
	{0xfe, 0xed, 0xfa, 0xce},    // Mach-O 32
	{0xfe, 0xed, 0xfa, 0xcf},    // Mach-O 64
	{0xcf, 0xfa, 0xed, 0xfe},    // Mach-O 64 LE
	{'S', 'Q', 'L', 'i', 't'},   // SQLite
	{0x00, 0x61, 0x73, 0x6d},    // WASM
}

// Filter decides whether a filesystem entry is eligible for indexing.
// It has no side effects and is safe for concurrent use once built.
type Filter struct {
	root     string
	indexDir string
	denyExts map[string]bool
	matcher  *ignore.GitIgnore
}

// Config controls filter construction.
type Config struct {
	// Root is the absolute project root.
	Root string
	// IndexDir is the absolute path of the index output directory;
	// everything under it is rejected.
	IndexDir string
	// DenyExtensions extends the built-in extension denylist.
	DenyExtensions []string
	// IgnoreFile is the gitignore-style pattern file, read once if it
	// exists. Defaults to <root>/.gitignore.
	IgnoreFile string
}

// New builds a Filter for the given project root.
func New(cfg Config) (*Filter, error) {
	f := &Filter{
		root:     filepath.Clean(cfg.Root),
		indexDir: filepath.Clean(cfg.IndexDir),
		denyExts: make(map[string]bool),
	}

	for _, ext := range defaultDenyExts {
		f.denyExts[ext] = true
	}
	for _, ext := range cfg.DenyExtensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.denyExts[ext] = true
	}

	ignoreFile := cfg.IgnoreFile
	if ignoreFile == "" {
		ignoreFile = filepath.Join(f.root, ".gitignore")
	}
	if _, err := os.Stat(ignoreFile); err == nil {
		matcher, err := ignore.CompileIgnoreFile(ignoreFile)
		if err != nil {
			return nil, err
		}
		f.matcher = matcher
	}

	return f, nil
}

// ExcludedDir reports whether a directory should be skipped entirely
// during a walk (the index directory itself, or an ignored path).
func (f *Filter) ExcludedDir(absPath string) bool {
	if f.insideIndexDir(absPath) {
		return true
	}
	rel := f.relative(absPath)
	if rel == "." {
		return false
	}
	// Hidden directories such as .git are never descended into.
	if strings.HasPrefix(filepath.Base(absPath), ".") {
		return true
	}
	// gitignore directory patterns match with a trailing slash.
	if f.matcher != nil && f.matcher.MatchesPath(rel+"/") {
		return true
	}
	return false
}

// ShouldIndex reports whether a file is eligible for indexing.
// Directories are always rejected; callers use ExcludedDir for walk
// pruning instead.
func (f *Filter) ShouldIndex(absPath string, isDir bool) bool {
	if isDir {
		return false
	}
	if f.insideIndexDir(absPath) {
		return false
	}

	name := filepath.Base(absPath)
	for ext := range f.denyExts {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return false
		}
	}

	if f.matcher != nil && f.matcher.MatchesPath(f.relative(absPath)) {
		return false
	}

	return f.looksLikeText(absPath)
}

// looksLikeText applies the binary/text heuristic to the first 1KB of
// the file. Unreadable files are rejected; the scanner records its own
// error for those separately.
func (f *Filter) looksLikeText(absPath string) bool {
	file, err := os.Open(absPath)
	if err != nil {
		return false
	}
	defer func() { _ = file.Close() }()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	head := buf[:n]
	if len(head) == 0 {
		// Empty files are valid text.
		return true
	}

	for _, magic := range binaryMagic {
		if bytes.HasPrefix(head, magic) {
			return false
		}
	}

	if containsNul(head) {
		ext := strings.ToLower(filepath.Ext(absPath))
		return sourceExts[ext] && utf8.Valid(head)
	}

	return utf8.Valid(head)
}

func (f *Filter) insideIndexDir(absPath string) bool {
	if f.indexDir == "" {
		return false
	}
	if absPath == f.indexDir {
		return true
	}
	return strings.HasPrefix(absPath, f.indexDir+string(filepath.Separator))
}

// relative converts an absolute path to the slash-separated
// project-relative form gitignore patterns are written against.
func (f *Filter) relative(absPath string) string {
	rel, err := filepath.Rel(f.root, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}

func containsNul(b []byte) bool {
	return bytes.IndexByte(b, 0) >= 0
}
