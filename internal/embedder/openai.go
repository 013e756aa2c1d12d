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

// OpenAI provider defaults.
const (
	ProviderOpenAI = "openai"

	DefaultOpenAIEmbedModel = "text-embedding-3-small"
	DefaultOpenAIChatModel  = "gpt-4o-mini"
	OpenAIDimension         = 1536

	openAIBaseURL = "https://api.openai.com/v1"
)

// OpenAIProvider implements Provider against the OpenAI API.
type OpenAIProvider struct {
	apiKey     string
	embedModel string
	chatModel  string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIProvider creates an OpenAI-backed provider.
func NewOpenAIProvider(apiKey string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing OpenAI API key", ErrUnsupportedProvider)
	}
	return &OpenAIProvider{
		apiKey:     apiKey,
		embedModel: DefaultOpenAIEmbedModel,
		chatModel:  DefaultOpenAIChatModel,
		baseURL:    openAIBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type openAIEmbedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// GenerateEmbedding calls the embeddings endpoint.
func (o *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	var resp openAIEmbedResponse
	err := o.post(ctx, "/embeddings", openAIEmbedRequest{
		Input: []string{text},
		Model: o.embedModel,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrProviderFailed)
	}
	return resp.Data[0].Embedding, nil
}

// GenerateDescription calls the chat completions endpoint.
func (o *OpenAIProvider) GenerateDescription(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}

	var resp openAIChatResponse
	err := o.post(ctx, "/chat/completions", openAIChatRequest{
		Model: o.chatModel,
		Messages: []openAIMessage{
			{Role: "user", Content: prompt},
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion returned", ErrProviderFailed)
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

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
func (o *OpenAIProvider) Dimension() int { return OpenAIDimension }

// Name returns the provider name.
func (o *OpenAIProvider) Name() string { return ProviderOpenAI }

// Close is a no-op.
func (o *OpenAIProvider) Close() error { return nil }
