package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Ollama provider defaults.
const (
	ProviderOllama = "ollama"

	DefaultOllamaURL        = "http://localhost:11434"
	DefaultOllamaEmbedModel = "nomic-embed-text"
	DefaultOllamaChatModel  = "qwen3:8b"
	OllamaDimension         = 768
)

// OllamaProvider implements Provider against a local Ollama instance.
type OllamaProvider struct {
	baseURL    string
	embedModel string
	chatModel  string
	httpClient *http.Client
}

// NewOllamaProvider creates an Ollama-backed provider. Empty arguments
// fall back to defaults.
func NewOllamaProvider(baseURL, embedModel, chatModel string) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if embedModel == "" {
		embedModel = DefaultOllamaEmbedModel
	}
	if chatModel == "" {
		chatModel = DefaultOllamaChatModel
	}
	return &OllamaProvider{
		baseURL:    baseURL,
		embedModel: embedModel,
		chatModel:  chatModel,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

// GenerateEmbedding calls /api/embed.
func (o *OllamaProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	var resp ollamaEmbedResponse
	err := o.post(ctx, "/api/embed", ollamaEmbedRequest{
		Model: o.embedModel,
		Input: []string{text},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrProviderFailed, len(resp.Embeddings))
	}
	return resp.Embeddings[0], nil
}

// GenerateDescription calls /api/chat without streaming.
func (o *OllamaProvider) GenerateDescription(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}

	var resp ollamaChatResponse
	err := o.post(ctx, "/api/chat", ollamaChatRequest{
		Model:    o.chatModel,
		Messages: []ollamaMessage{{Role: "user", Content: prompt}},
		Stream:   false,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

func (o *OllamaProvider) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrProviderFailed, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Dimension returns the embedding dimension.
func (o *OllamaProvider) Dimension() int { return OllamaDimension }

// Name returns the provider name.
func (o *OllamaProvider) Name() string { return ProviderOllama }

// Close is a no-op.
func (o *OllamaProvider) Close() error { return nil }
