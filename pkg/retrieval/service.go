package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andrew/support-rag/pkg/embedding"
	"github.com/andrew/support-rag/pkg/models"
	"github.com/andrew/support-rag/pkg/vector"
)

var (
	// ErrEmptyQuery is returned for blank queries before any port is called.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrUnavailable indicates the embedding service or the vector index
	// failed; the underlying port error remains in the chain.
	ErrUnavailable = errors.New("retrieval unavailable")
)

// Config contains configuration for a retrieval service
type Config struct {
	// TopK is the maximum number of results to return
	TopK int

	// ScoreThreshold is the minimum similarity score for results
	ScoreThreshold float32
}

// Service retrieves passages relevant to a query by embedding the query and
// delegating the nearest-neighbor search to the vector index.
type Service struct {
	embedder embedding.Embedder
	store    vector.Store
	config   Config
}

// NewService constructs a retrieval service over the given embedder and
// vector store.
func NewService(embedder embedding.Embedder, store vector.Store, config Config) *Service {
	if config.TopK <= 0 {
		config.TopK = 3
	}
	return &Service{embedder: embedder, store: store, config: config}
}

// Search returns up to TopK passages ranked by descending similarity.
// Passages below the score threshold are excluded. An empty index yields an
// empty result list, never an error.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	results, err := s.store.Search(ctx, queryVector, s.config.TopK, s.config.ScoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return results, nil
}
