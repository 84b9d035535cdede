package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaProvider implements EmbeddingProvider for local Ollama models (e.g., all-minilm)
type OllamaProvider struct {
	client *api.Client
	Model  string
}

func NewOllamaProvider(baseURL string, model string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "all-minilm"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	return &OllamaProvider{
		client: api.NewClient(u, &http.Client{Timeout: 30 * time.Second}),
		Model:  model,
	}, nil
}

func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embed(ctx, &api.EmbedRequest{
		Model: p.Model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("ollama embed: no embeddings returned")
	}
	return resp.Embeddings[0], nil
}
