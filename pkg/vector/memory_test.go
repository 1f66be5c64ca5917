package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew/support-rag/pkg/models"
)

func TestMemoryStoreSearchEmptyIndex(t *testing.T) {
	store := NewMemoryStore()

	results, err := store.Search(context.Background(), []float32{1, 0, 0}, 3, 0)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStoreRanksBySimilarity(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "a", []float32{1, 0, 0}, models.Chunk{Source: "a.txt"}))
	require.NoError(t, store.Upsert(ctx, "b", []float32{0, 1, 0}, models.Chunk{Source: "b.txt"}))
	require.NoError(t, store.Upsert(ctx, "c", []float32{0.9, 0.1, 0}, models.Chunk{Source: "c.txt"}))

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2, 0)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.txt", results[0].Chunk.Source)
	assert.Equal(t, "c.txt", results[1].Chunk.Source)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryStoreThresholdExcludesWeakMatches(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "a", []float32{1, 0}, models.Chunk{Source: "a.txt"}))
	require.NoError(t, store.Upsert(ctx, "b", []float32{0, 1}, models.Chunk{Source: "b.txt"}))

	results, err := store.Search(ctx, []float32{1, 0}, 10, 0.5)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.txt", results[0].Chunk.Source)
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id := PointID("doc.txt", 0)
	require.NoError(t, store.Upsert(ctx, id, []float32{1, 0}, models.Chunk{Source: "doc.txt", Content: "v1"}))
	require.NoError(t, store.Upsert(ctx, id, []float32{1, 0}, models.Chunk{Source: "doc.txt", Content: "v2"}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	results, err := store.Search(ctx, []float32{1, 0}, 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "v2", results[0].Chunk.Content)
}

func TestPointIDIsStable(t *testing.T) {
	assert.Equal(t, PointID("doc.txt", 3), PointID("doc.txt", 3))
	assert.NotEqual(t, PointID("doc.txt", 3), PointID("doc.txt", 4))
	assert.NotEqual(t, PointID("doc.txt", 3), PointID("other.txt", 3))
}
