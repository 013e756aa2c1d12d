package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/semidx/semidx/internal/chunker"
	"github.com/semidx/semidx/internal/metadata"
	"github.com/semidx/semidx/pkg/types"
)

// maxPromptSignatures bounds how many signatures go into the
// description prompt.
const maxPromptSignatures = 30

// processFile runs the per-file pipeline: extract signatures and
// chunks, generate a description (degrading to a minimal fallback),
// embed every chunk (hard failure), run enhanced analysis (optional),
// persist all artifacts and update the cache. Only a completed
// pipeline touches the cache, so the cache never claims a
// half-indexed file.
func (idx *Indexer) processFile(ctx context.Context, entry *types.DirectoryEntry) (*types.FileMetadata, error) {
	content, err := os.ReadFile(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	relPath := idx.store.RelPath(entry.Path)

	extraction, err := idx.chunker.Extract(entry.Path, content)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}

	description := idx.describe(ctx, relPath, extraction)

	embeddings := make([][]float32, 0, len(extraction.Chunks))
	for _, chunk := range extraction.Chunks {
		vector, err := idx.provider.GenerateEmbedding(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %q: %w", chunk.Name, err)
		}
		embeddings = append(embeddings, vector)
	}

	analysis, err := idx.analyzers.Analyze(entry.Path, content)
	if err != nil {
		idx.logger.Warn("analysis failed", "path", relPath, "error", err)
		analysis = nil
	}

	meta := &types.FileMetadata{
		MetadataVersion: types.CurrentMetadataVersion,
		Name:            entry.Name,
		Path:            relPath,
		Hash:            entry.ContentHash,
		Size:            entry.Size,
		Extension:       entry.Extension,
		ModTime:         entry.ModTime,
		Description:     description,
		Signatures:      extraction.Signatures,
		Chunks:          extraction.Chunks,
		Embeddings:      embeddings,
		Analysis:        analysis,
		IndexedAt:       time.Now(),
	}

	record := &types.EmbeddingRecord{
		Path:       relPath,
		Chunks:     extraction.Chunks,
		Embeddings: embeddings,
		Meta: types.RecordMeta{
			ContentHash: entry.ContentHash,
			ChunkCount:  len(extraction.Chunks),
			Dimension:   idx.provider.Dimension(),
			Language:    language(extraction, analysis),
			IndexedAt:   meta.IndexedAt,
		},
	}

	if err := idx.store.WriteMetadata(entry.Path, meta); err != nil {
		return nil, fmt.Errorf("persist metadata: %w", err)
	}
	if err := idx.store.WriteDescription(entry.Path, description); err != nil {
		return nil, fmt.Errorf("persist description: %w", err)
	}
	if err := idx.store.WriteEmbeddingRecord(entry.Path, record); err != nil {
		return nil, fmt.Errorf("persist embeddings: %w", err)
	}

	idx.cache.Set(entry.Path, metadata.Entry{
		ContentHash: entry.ContentHash,
		ModTime:     entry.ModTime,
	})
	return meta, nil
}

// describe asks the provider for a file description, falling back to a
// minimal one on failure. Description failures never fail the file.
func (idx *Indexer) describe(ctx context.Context, relPath string, extraction *chunker.Extraction) string {
	description, err := idx.provider.GenerateDescription(ctx, descriptionPrompt(relPath, extraction))
	if err != nil || strings.TrimSpace(description) == "" {
		if err != nil {
			idx.logger.Warn("description failed, using fallback", "path", relPath, "error", err)
		}
		return fmt.Sprintf("File: %s", filepath.Base(relPath))
	}
	return strings.TrimSpace(description)
}

// descriptionPrompt builds the summarization prompt from the file path
// and its extracted signatures.
func descriptionPrompt(relPath string, extraction *chunker.Extraction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the purpose of the source file %s in one or two sentences.\n", relPath)
	if extraction.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", extraction.Language)
	}
	if len(extraction.Signatures) > 0 {
		b.WriteString("Declared symbols:\n")
		sigs := extraction.Signatures
		if len(sigs) > maxPromptSignatures {
			sigs = sigs[:maxPromptSignatures]
		}
		for _, sig := range sigs {
			fmt.Fprintf(&b, "  %s\n", sig.Signature)
		}
	}
	return b.String()
}

func language(extraction *chunker.Extraction, analysis *types.AnalysisResult) string {
	if extraction.Language != "" {
		return extraction.Language
	}
	if analysis != nil {
		return analysis.Language
	}
	return ""
}
