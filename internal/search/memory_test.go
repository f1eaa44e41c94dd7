package search

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

func destEntity(name string, embedding []float32) storage.Entity {
	return storage.Entity{
		ID:        uuid.New(),
		Type:      storage.EntityDestination,
		Name:      name,
		Embedding: embedding,
	}
}

func TestMemoryStore_IdenticalVectorScoresOne(t *testing.T) {
	store := NewMemoryStore(3)
	require.NoError(t, store.Add(destEntity("a", []float32{1, 2, 3})))

	results, err := store.Search(context.Background(), Params{
		Type: storage.EntityDestination, Limit: 10,
	}, []float32{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
}

func TestMemoryStore_OrdersBySimilarityDescending(t *testing.T) {
	store := NewMemoryStore(2)
	require.NoError(t, store.Add(
		destEntity("orthogonal", []float32{0, 1}),
		destEntity("exact", []float32{1, 0}),
		destEntity("diagonal", []float32{1, 1}),
	))

	results, err := store.Search(context.Background(), Params{
		Type: storage.EntityDestination, Limit: 10,
	}, []float32{1, 0})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "exact", results[0].Entity.Name)
	assert.Equal(t, "diagonal", results[1].Entity.Name)
	assert.Equal(t, "orthogonal", results[2].Entity.Name)
}

func TestMemoryStore_ThresholdFilters(t *testing.T) {
	store := NewMemoryStore(2)
	require.NoError(t, store.Add(
		destEntity("exact", []float32{1, 0}),
		destEntity("orthogonal", []float32{0, 1}),
	))

	results, err := store.Search(context.Background(), Params{
		Type: storage.EntityDestination, Limit: 10, Threshold: 0.5,
	}, []float32{1, 0})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "exact", results[0].Entity.Name)
}

func TestMemoryStore_TiesKeepInsertionOrder(t *testing.T) {
	store := NewMemoryStore(2)
	// Same vector, so identical similarity for all three.
	require.NoError(t, store.Add(
		destEntity("first", []float32{2, 0}),
		destEntity("second", []float32{5, 0}),
		destEntity("third", []float32{1, 0}),
	))

	for i := 0; i < 5; i++ {
		results, err := store.Search(context.Background(), Params{
			Type: storage.EntityDestination, Limit: 10,
		}, []float32{1, 0})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "first", results[0].Entity.Name)
		assert.Equal(t, "second", results[1].Entity.Name)
		assert.Equal(t, "third", results[2].Entity.Name)
	}
}

func TestMemoryStore_LimitApplies(t *testing.T) {
	store := NewMemoryStore(2)
	for i := 0; i < 20; i++ {
		require.NoError(t, store.Add(destEntity("d", []float32{1, 0})))
	}

	results, err := store.Search(context.Background(), Params{
		Type: storage.EntityDestination, Limit: 5,
	}, []float32{1, 0})
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestMemoryStore_DimensionMismatch(t *testing.T) {
	store := NewMemoryStore(3)

	t.Run("query", func(t *testing.T) {
		_, err := store.Search(context.Background(), Params{Type: storage.EntityDestination}, []float32{1, 0})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("insert", func(t *testing.T) {
		err := store.Add(destEntity("bad", []float32{1, 0}))
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

func TestMemoryStore_SkipsEmbeddinglessEntities(t *testing.T) {
	store := NewMemoryStore(2)
	require.NoError(t, store.Add(storage.Entity{
		ID:   uuid.New(),
		Type: storage.EntityDestination,
		Name: "no embedding",
	}))

	assert.Zero(t, store.Count(storage.EntityDestination))
}
