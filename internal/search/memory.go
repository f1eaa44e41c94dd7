package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// MemoryStore is an in-process vector store. Vectors are normalized on
// insert so cosine similarity reduces to a dot product. Entities are kept in
// insertion order per type, which is the tie-break order for equal
// similarities.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	entities  map[storage.EntityType][]indexedEntity
}

type indexedEntity struct {
	entity storage.Entity
	vector []float32 // unit length
}

// NewMemoryStore creates a memory store for vectors of the given dimension.
func NewMemoryStore(dimension int) *MemoryStore {
	if dimension <= 0 {
		dimension = 1024
	}
	return &MemoryStore{
		dimension: dimension,
		entities:  make(map[storage.EntityType][]indexedEntity),
	}
}

// Dimension returns the configured vector dimension.
func (s *MemoryStore) Dimension() int {
	return s.dimension
}

// Add indexes entities. Entities without an embedding are accepted but never
// indexed; a present embedding with the wrong dimension is rejected.
func (s *MemoryStore) Add(entities ...storage.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entities {
		if !e.HasEmbedding() {
			continue
		}
		if len(e.Embedding) != s.dimension {
			return fmt.Errorf("%w: entity %s has %d components, store expects %d",
				ErrDimensionMismatch, e.ID, len(e.Embedding), s.dimension)
		}
		s.entities[e.Type] = append(s.entities[e.Type], indexedEntity{
			entity: e,
			vector: normalizeVector(e.Embedding),
		})
	}

	return nil
}

// Count returns the number of indexed entities of the given type.
func (s *MemoryStore) Count(t storage.EntityType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities[t])
}

// Search returns up to p.Limit entities of p.Type with similarity >= p.Threshold,
// ordered by similarity descending. Ties keep insertion order.
func (s *MemoryStore) Search(ctx context.Context, p Params, query []float32) ([]Result, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), s.dimension)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := normalizeVector(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Result, 0, len(s.entities[p.Type]))
	for _, ie := range s.entities[p.Type] {
		sim := dotProduct(q, ie.vector)
		if sim < p.Threshold {
			continue
		}
		results = append(results, Result{Entity: ie.entity, Similarity: sim})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if p.Limit > 0 && len(results) > p.Limit {
		results = results[:p.Limit]
	}

	return results, nil
}

// dotProduct of two unit vectors is their cosine similarity, clamped to
// [0, 1] against floating-point drift.
func dotProduct(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	if dot > 1 {
		dot = 1
	}
	if dot < 0 {
		dot = 0
	}
	return dot
}

// normalizeVector returns a unit-length copy of v.
func normalizeVector(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)

	if norm == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
