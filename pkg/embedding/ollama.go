package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaEmbedder produces embeddings through a local Ollama server.
type OllamaEmbedder struct {
	client    *api.Client
	model     string
	dimension int
}

// NewOllamaEmbedder creates an embedder backed by the Ollama API at baseURL.
// dimension is the vector size the model produces (fixed at deployment time).
func NewOllamaEmbedder(baseURL, model string, dimension int) (*OllamaEmbedder, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL %q: %w", baseURL, err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	return &OllamaEmbedder{
		client:    api.NewClient(parsed, httpClient),
		model:     model,
		dimension: dimension,
	}, nil
}

// Embed requests an embedding for the given text. The call is a single
// blocking round trip; failures surface as ErrUnavailable.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := &api.EmbeddingRequest{
		Model:  e.model,
		Prompt: text,
	}

	resp, err := e.client.Embeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: model %q returned an empty embedding", ErrUnavailable, e.model)
	}

	vector := make([]float32, len(resp.Embedding))
	for i, val := range resp.Embedding {
		vector[i] = float32(val)
	}
	return vector, nil
}

// Dimension returns the configured vector size.
func (e *OllamaEmbedder) Dimension() int {
	return e.dimension
}
