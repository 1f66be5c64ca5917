package vector

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/andrew/support-rag/pkg/models"
)

// ErrUnavailable indicates the vector index could not serve the request.
var ErrUnavailable = errors.New("vector index unavailable")

// Store defines the interface for vector index operations. Implementations
// rank search results by descending similarity and exclude results scoring
// below the given threshold. Searching an empty index returns an empty
// result list, not an error.
type Store interface {
	// Upsert inserts or replaces the entry with the given id.
	Upsert(ctx context.Context, id string, vector []float32, chunk models.Chunk) error

	// Search returns up to limit entries nearest to the query vector.
	Search(ctx context.Context, vector []float32, limit int, threshold float32) ([]models.SearchResult, error)

	// Count reports the number of indexed entries.
	Count(ctx context.Context) (int64, error)

	// Close releases resources held by the store.
	Close() error
}

// PointID derives the stable index identifier for a chunk from its source
// document and position. Re-ingesting a document therefore replaces its
// existing entries instead of duplicating them.
func PointID(source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%s#%d", source, index)).String()
}
