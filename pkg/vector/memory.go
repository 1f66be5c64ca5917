package vector

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/andrew/support-rag/pkg/models"
)

// MemoryStore is an in-memory Store using brute-force cosine similarity.
// It serves tests and local runs where no Qdrant server is available.
type MemoryStore struct {
	mu      sync.RWMutex
	vectors map[string][]float32
	chunks  map[string]models.Chunk
	order   []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vectors: make(map[string][]float32),
		chunks:  make(map[string]models.Chunk),
	}
}

// Upsert stores the entry, replacing any existing entry with the same id.
func (s *MemoryStore) Upsert(_ context.Context, id string, vector []float32, chunk models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vectors[id]; !exists {
		s.order = append(s.order, id)
	}
	s.vectors[id] = vector
	s.chunks[id] = chunk
	return nil
}

// Search ranks all entries by cosine similarity to the query vector. Ties
// keep insertion order.
func (s *MemoryStore) Search(_ context.Context, vector []float32, limit int, threshold float32) ([]models.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.SearchResult, 0, len(s.order))
	for _, id := range s.order {
		score := cosineSimilarity(vector, s.vectors[id])
		if threshold > 0 && score < threshold {
			continue
		}
		results = append(results, models.SearchResult{Chunk: s.chunks[id], Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count reports the number of stored entries.
func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.order)), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
