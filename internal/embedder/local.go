package embedder

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// Local provider defaults.
const (
	ProviderLocal  = "local"
	LocalDimension = 384
)

// LocalProvider is a deterministic, offline Provider. Embeddings are
// derived from content hashes and descriptions from the prompt itself,
// so the full pipeline runs without any external model. Useful for
// tests and for air-gapped smoke runs; not a real semantic model.
type LocalProvider struct{}

// NewLocalProvider creates the offline provider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// GenerateEmbedding returns a deterministic unit vector derived from
// the text's SHA-256.
func (l *LocalProvider) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	vector := make([]float32, LocalDimension)
	sum := sha256.Sum256([]byte(text))
	for i := 0; i < LocalDimension; i++ {
		// Rotate the digest every 32 bytes so the vector isn't periodic.
		if i > 0 && i%len(sum) == 0 {
			sum = sha256.Sum256(sum[:])
		}
		vector[i] = float32(sum[i%len(sum)]) / 255.0
	}
	return normalize(vector), nil
}

// GenerateDescription returns a one-line summary built from the
// prompt; the first path-like token becomes the subject.
func (l *LocalProvider) GenerateDescription(_ context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}

	for _, field := range strings.Fields(prompt) {
		if strings.ContainsAny(field, "./\\") {
			return fmt.Sprintf("File: %s", filepath.Base(strings.Trim(field, ":,"))), nil
		}
	}
	line := prompt
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	if len(line) > 120 {
		line = line[:120]
	}
	return line, nil
}

// Dimension returns the embedding dimension.
func (l *LocalProvider) Dimension() int { return LocalDimension }

// Name returns the provider name.
func (l *LocalProvider) Name() string { return ProviderLocal }

// Close is a no-op.
func (l *LocalProvider) Close() error { return nil }

// normalize scales a vector to unit length so cosine similarity
// behaves sensibly.
func normalize(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}
