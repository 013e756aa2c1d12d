package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/semidx/semidx/internal/metadata"
	"github.com/semidx/semidx/pkg/types"
)

// Subdirectories of the index root.
const (
	MetadataDir     = "metadata"
	EmbeddingsDir   = "embeddings"
	DescriptionsDir = "descriptions"
	LogsDir         = "logs"
)

// ErrNotFound is returned when no artifact exists for a path.
var ErrNotFound = errors.New("record not found")

var nonWord = regexp.MustCompile(`\W`)

// Store persists indexing artifacts under the index root:
// metadata/<safe>.json, embeddings/<safe>.json and
// descriptions/<safe>.txt, one of each per indexed source file. JSON
// artifacts are written atomically (temp file plus rename) so a crash
// never leaves a partial record behind.
type Store struct {
	projectRoot string
	indexRoot   string
}

// New creates a Store for the given project and index roots. It does
// not touch the filesystem; call EnsureLayout before writing.
func New(projectRoot, indexRoot string) *Store {
	return &Store{
		projectRoot: filepath.Clean(projectRoot),
		indexRoot:   filepath.Clean(indexRoot),
	}
}

// IndexRoot returns the index root directory.
func (s *Store) IndexRoot() string { return s.indexRoot }

// EmbeddingsPath returns the embeddings subdirectory.
func (s *Store) EmbeddingsPath() string { return filepath.Join(s.indexRoot, EmbeddingsDir) }

// LogsPath returns the run log subdirectory.
func (s *Store) LogsPath() string { return filepath.Join(s.indexRoot, LogsDir) }

// EnsureLayout creates the index directory structure. Failure here is
// fatal for an indexing run: nothing can be persisted without it.
func (s *Store) EnsureLayout() error {
	for _, dir := range []string{MetadataDir, EmbeddingsDir, DescriptionsDir, LogsDir} {
		if err := os.MkdirAll(filepath.Join(s.indexRoot, dir), 0o755); err != nil {
			return fmt.Errorf("create index directory %s: %w", dir, err)
		}
	}
	return nil
}

// SafeName converts an absolute file path into the collision-free,
// filesystem-safe artifact name: the project-relative path with every
// non-word character replaced by an underscore, suffixed with a short
// hash of the original relative path. The suffix is what makes the
// name collision-free ("src/main.go" and "src_main.go" sanitize
// identically otherwise).
func (s *Store) SafeName(absPath string) string {
	rel := s.RelPath(absPath)
	sum := sha256.Sum256([]byte(rel))
	return nonWord.ReplaceAllString(rel, "_") + "-" + hex.EncodeToString(sum[:4])
}

// RelPath converts an absolute path under the project root to its
// slash-separated relative form, as stored in persisted records.
func (s *Store) RelPath(absPath string) string {
	rel, err := filepath.Rel(s.projectRoot, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}

// AbsPath converts a stored project-relative path back to absolute.
func (s *Store) AbsPath(relPath string) string {
	return filepath.Join(s.projectRoot, filepath.FromSlash(relPath))
}

func (s *Store) metadataFile(absPath string) string {
	return filepath.Join(s.indexRoot, MetadataDir, s.SafeName(absPath)+".json")
}

func (s *Store) embeddingFile(absPath string) string {
	return filepath.Join(s.indexRoot, EmbeddingsDir, s.SafeName(absPath)+".json")
}

func (s *Store) descriptionFile(absPath string) string {
	return filepath.Join(s.indexRoot, DescriptionsDir, s.SafeName(absPath)+".txt")
}

// WriteMetadata persists a FileMetadata record atomically.
func (s *Store) WriteMetadata(absPath string, meta *types.FileMetadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	return writeJSONAtomic(s.metadataFile(absPath), meta)
}

// ReadMetadata loads the FileMetadata record for a path, migrating
// older record versions in place.
func (s *Store) ReadMetadata(absPath string) (*types.FileMetadata, error) {
	data, err := os.ReadFile(s.metadataFile(absPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var meta types.FileMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", absPath, err)
	}
	meta.Migrate()
	return &meta, nil
}

// WriteEmbeddingRecord persists an EmbeddingRecord atomically.
func (s *Store) WriteEmbeddingRecord(absPath string, rec *types.EmbeddingRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	return writeJSONAtomic(s.embeddingFile(absPath), rec)
}

// ReadEmbeddingRecord loads the EmbeddingRecord for a path.
func (s *Store) ReadEmbeddingRecord(absPath string) (*types.EmbeddingRecord, error) {
	data, err := os.ReadFile(s.embeddingFile(absPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rec types.EmbeddingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode embedding record for %s: %w", absPath, err)
	}
	return &rec, nil
}

// WriteDescription persists the plain-text description for a path.
func (s *Store) WriteDescription(absPath, description string) error {
	return os.WriteFile(s.descriptionFile(absPath), []byte(description), 0o644)
}

// ReadDescription loads the description for a path.
func (s *Store) ReadDescription(absPath string) (string, error) {
	data, err := os.ReadFile(s.descriptionFile(absPath))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

// DeleteArtifacts removes every artifact for a path. Missing files are
// not an error; deletion is idempotent.
func (s *Store) DeleteArtifacts(absPath string) error {
	var firstErr error
	for _, p := range []string{s.metadataFile(absPath), s.embeddingFile(absPath), s.descriptionFile(absPath)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ListMetadata loads every persisted FileMetadata record, migrating as
// needed. Undecodable records are skipped; a corrupt artifact must not
// take down status reporting.
func (s *Store) ListMetadata() ([]*types.FileMetadata, error) {
	dir := filepath.Join(s.indexRoot, MetadataDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []*types.FileMetadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var meta types.FileMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		meta.Migrate()
		records = append(records, &meta)
	}
	return records, nil
}

// HasEntries reports whether any metadata artifacts exist, without
// decoding them. The scan planner uses this to distinguish a fresh
// project from one with an existing index.
func (s *Store) HasEntries() bool {
	entries, err := os.ReadDir(filepath.Join(s.indexRoot, MetadataDir))
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			return true
		}
	}
	return false
}

// LoadCache rebuilds the metadata cache from persisted records.
func (s *Store) LoadCache() (*metadata.Cache, error) {
	records, err := s.ListMetadata()
	if err != nil {
		return nil, err
	}

	cache := metadata.NewCache()
	for _, rec := range records {
		cache.Set(s.AbsPath(rec.Path), metadata.Entry{
			ContentHash: rec.Hash,
			ModTime:     rec.ModTime,
		})
	}
	return cache, nil
}

// writeJSONAtomic marshals v and writes it via a temp file in the
// destination directory, then renames into place.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s into place: %w", filepath.Base(path), err)
	}
	return nil
}

// WalkEmbeddingRecords streams every persisted embedding record to fn.
// Used by similarity search to build its in-memory index.
func (s *Store) WalkEmbeddingRecords(fn func(*types.EmbeddingRecord) error) error {
	dir := s.EmbeddingsPath()
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var rec types.EmbeddingRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil
		}
		return fn(&rec)
	})
}
