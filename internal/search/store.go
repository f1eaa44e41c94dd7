// Package search provides multi-entity approximate nearest-neighbor search
// over travel entity embeddings.
package search

import (
	"context"
	"errors"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// ErrDimensionMismatch indicates the query vector does not match the store's
// configured dimension. This is a configuration fault (an upstream
// model/version mismatch), not a transient condition, and must surface to the
// caller instead of degrading silently.
var ErrDimensionMismatch = errors.New("query vector dimension mismatch")

// Result is a similarity-scored entity.
type Result struct {
	Entity     storage.Entity
	Similarity float64
}

// Params bounds a single per-type similarity query.
type Params struct {
	Type      storage.EntityType
	Limit     int
	Threshold float64 // minimum similarity in [0, 1]
}

// Store finds entities near a query vector. Implementations must never
// return entities without a stored embedding, and must break similarity ties
// by their underlying storage order so that repeated queries are stable.
type Store interface {
	Search(ctx context.Context, p Params, query []float32) ([]Result, error)
	Dimension() int
}
