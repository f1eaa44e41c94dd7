package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/observability"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// ErrNoEmbedding indicates an entity-to-entity search was attempted for an
// entity that has no stored embedding.
var ErrNoEmbedding = errors.New("entity has no embedding")

// Options bounds the searcher's per-type queries.
type Options struct {
	Limit            int
	Threshold        float64
	SimilarThreshold float64 // entity-to-entity variant, typically higher
	Timeout          time.Duration
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		Limit:            10,
		Threshold:        0.3,
		SimilarThreshold: 0.6,
		Timeout:          10 * time.Second,
	}
}

// Searcher fans one query vector out across all entity types.
type Searcher struct {
	store  Store
	opts   Options
	logger *observability.Logger
}

// NewSearcher creates a searcher over the given store.
func NewSearcher(store Store, opts Options, logger *observability.Logger) *Searcher {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.SimilarThreshold <= 0 {
		opts.SimilarThreshold = 0.6
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Searcher{
		store:  store,
		opts:   opts,
		logger: logger.WithComponent("search"),
	}
}

// ResultSet holds per-type candidates from one multi-entity search. A type
// whose query failed has an empty slice and appears in Failed; partial
// results are valid, the pipeline proceeds with whatever came back.
type ResultSet struct {
	Destinations []Result
	Properties   []Result
	Categories   []Result
	Amenities    []Result
	Failed       []storage.EntityType
}

// ForType returns the candidates for one entity type.
func (rs *ResultSet) ForType(t storage.EntityType) []Result {
	switch t {
	case storage.EntityDestination:
		return rs.Destinations
	case storage.EntityProperty:
		return rs.Properties
	case storage.EntityCategory:
		return rs.Categories
	case storage.EntityAmenity:
		return rs.Amenities
	}
	return nil
}

// Empty reports whether every type came back without candidates.
func (rs *ResultSet) Empty() bool {
	return len(rs.Destinations) == 0 && len(rs.Properties) == 0 &&
		len(rs.Categories) == 0 && len(rs.Amenities) == 0
}

// SearchAll runs the four per-type queries concurrently against one query
// vector. The queries are independent and side-effect free; a failed or
// slow type never blocks the others. A dimension mismatch is fatal for the
// whole search and returns before any query is issued.
func (s *Searcher) SearchAll(ctx context.Context, query []float32) (*ResultSet, error) {
	if len(query) != s.store.Dimension() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), s.store.Dimension())
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	set := &ResultSet{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, entityType := range storage.AllEntityTypes() {
		wg.Add(1)
		go func(t storage.EntityType) {
			defer wg.Done()

			results, err := s.store.Search(ctx, Params{
				Type:      t,
				Limit:     s.opts.Limit,
				Threshold: s.opts.Threshold,
			}, query)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("entity_type", string(t)).
					Msg("per-type search failed, continuing with remaining types")
				set.Failed = append(set.Failed, t)
				return
			}

			switch t {
			case storage.EntityDestination:
				set.Destinations = results
			case storage.EntityProperty:
				set.Properties = results
			case storage.EntityCategory:
				set.Categories = results
			case storage.EntityAmenity:
				set.Amenities = results
			}
		}(entityType)
	}

	wg.Wait()

	return set, nil
}

// Similar finds entities of targetType near an existing entity's own
// embedding, excluding the entity itself. Uses the higher entity-to-entity
// threshold.
func (s *Searcher) Similar(ctx context.Context, entity storage.Entity, targetType storage.EntityType, limit int) ([]Result, error) {
	if !entity.HasEmbedding() {
		return nil, fmt.Errorf("%w: entity %s", ErrNoEmbedding, entity.ID)
	}
	if limit <= 0 {
		limit = s.opts.Limit
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	// Over-fetch by one in case the entity itself comes back.
	results, err := s.store.Search(ctx, Params{
		Type:      targetType,
		Limit:     limit + 1,
		Threshold: s.opts.SimilarThreshold,
	}, entity.Embedding)
	if err != nil {
		return nil, err
	}

	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Entity.ID == entity.ID {
			continue
		}
		filtered = append(filtered, r)
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return filtered, nil
}
