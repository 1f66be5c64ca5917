package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the embedding service could not be reached or
// returned an unusable response. Calls are single-attempt; retry policy
// belongs to the caller.
var ErrUnavailable = errors.New("embedding service unavailable")

// Embedder converts text into a fixed-dimension numeric vector.
type Embedder interface {
	// Embed returns the vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the size of the vectors this embedder produces.
	Dimension() int
}
