package search

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// PGVectorStore implements Store over Postgres with the pgvector extension.
// One table per entity type; rows without an embedding are filtered in SQL.
// Ties order by distance then id, so repeated queries are stable.
type PGVectorStore struct {
	db        *sqlx.DB
	dimension int
}

// NewPGVectorStore creates a pgvector-backed store.
func NewPGVectorStore(db *sqlx.DB, dimension int) *PGVectorStore {
	if dimension <= 0 {
		dimension = 1024
	}
	return &PGVectorStore{db: db, dimension: dimension}
}

// Dimension returns the configured vector dimension.
func (s *PGVectorStore) Dimension() int {
	return s.dimension
}

// Search returns up to p.Limit entities of p.Type above the similarity
// threshold, ordered by similarity descending.
func (s *PGVectorStore) Search(ctx context.Context, p Params, query []float32) ([]Result, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), s.dimension)
	}

	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}

	vec := pgvector.NewVector(query)

	switch p.Type {
	case storage.EntityDestination:
		return s.searchDestinations(ctx, vec, limit, p.Threshold)
	case storage.EntityProperty:
		return s.searchProperties(ctx, vec, limit, p.Threshold)
	case storage.EntityCategory:
		return s.searchCategories(ctx, vec, limit, p.Threshold)
	case storage.EntityAmenity:
		return s.searchAmenities(ctx, vec, limit, p.Threshold)
	}

	return nil, fmt.Errorf("unknown entity type: %s", p.Type)
}

type destinationRow struct {
	ID              uuid.UUID       `db:"id"`
	Name            string          `db:"name"`
	Region          string          `db:"region"`
	Description     string          `db:"description"`
	DestinationType string          `db:"destination_type"`
	Climate         string          `db:"climate"`
	BestSeasons     pq.StringArray  `db:"best_seasons"`
	Popularity      float64         `db:"popularity"`
	AvgDailyCost    sql.NullFloat64 `db:"avg_daily_cost"`
	Similarity      float64         `db:"similarity"`
}

func (s *PGVectorStore) searchDestinations(ctx context.Context, vec pgvector.Vector, limit int, threshold float64) ([]Result, error) {
	query := `
		SELECT id, name, region, description, destination_type, climate,
		       best_seasons, popularity, avg_daily_cost,
		       1 - (embedding <=> $1) AS similarity
		FROM destinations
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1 ASC, id ASC
		LIMIT $3
	`
	var rows []destinationRow
	if err := s.db.SelectContext(ctx, &rows, query, vec, threshold, limit); err != nil {
		return nil, fmt.Errorf("search destinations: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for _, r := range rows {
		e := storage.Entity{
			ID:          r.ID,
			Type:        storage.EntityDestination,
			Name:        r.Name,
			Region:      r.Region,
			Description: r.Description,
			Climate:     r.Climate,
			Tags:        []string{r.DestinationType},
			BestSeasons: r.BestSeasons,
			Popularity:  r.Popularity,
		}
		if r.AvgDailyCost.Valid {
			e.DailyCost = r.AvgDailyCost.Float64
		}
		results = append(results, Result{Entity: e, Similarity: r.Similarity})
	}
	return results, nil
}

type propertyRow struct {
	ID            uuid.UUID       `db:"id"`
	DestinationID uuid.UUID       `db:"destination_id"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	Category      string          `db:"category"`
	StarRating    float64         `db:"star_rating"`
	PricePerNight sql.NullFloat64 `db:"price_per_night"`
	Capacity      int             `db:"capacity"`
	AmenityTags   pq.StringArray  `db:"amenity_tags"`
	Similarity    float64         `db:"similarity"`
}

func (s *PGVectorStore) searchProperties(ctx context.Context, vec pgvector.Vector, limit int, threshold float64) ([]Result, error) {
	query := `
		SELECT id, destination_id, name, description, category, star_rating,
		       price_per_night, capacity, amenity_tags,
		       1 - (embedding <=> $1) AS similarity
		FROM properties
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1 ASC, id ASC
		LIMIT $3
	`
	var rows []propertyRow
	if err := s.db.SelectContext(ctx, &rows, query, vec, threshold, limit); err != nil {
		return nil, fmt.Errorf("search properties: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for _, r := range rows {
		e := storage.Entity{
			ID:          r.ID,
			Type:        storage.EntityProperty,
			ParentID:    r.DestinationID,
			Name:        r.Name,
			Description: r.Description,
			Category:    r.Category,
			StarRating:  r.StarRating,
			Capacity:    r.Capacity,
			Tags:        r.AmenityTags,
		}
		if r.PricePerNight.Valid {
			e.DailyCost = r.PricePerNight.Float64
		}
		results = append(results, Result{Entity: e, Similarity: r.Similarity})
	}
	return results, nil
}

type categoryRow struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Similarity  float64   `db:"similarity"`
}

func (s *PGVectorStore) searchCategories(ctx context.Context, vec pgvector.Vector, limit int, threshold float64) ([]Result, error) {
	query := `
		SELECT id, name, description,
		       1 - (embedding <=> $1) AS similarity
		FROM property_categories
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1 ASC, id ASC
		LIMIT $3
	`
	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, query, vec, threshold, limit); err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, Result{
			Entity: storage.Entity{
				ID:          r.ID,
				Type:        storage.EntityCategory,
				Name:        r.Name,
				Description: r.Description,
			},
			Similarity: r.Similarity,
		})
	}
	return results, nil
}

type amenityRow struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Category    string    `db:"category"`
	Description string    `db:"description"`
	Similarity  float64   `db:"similarity"`
}

func (s *PGVectorStore) searchAmenities(ctx context.Context, vec pgvector.Vector, limit int, threshold float64) ([]Result, error) {
	query := `
		SELECT id, name, category, description,
		       1 - (embedding <=> $1) AS similarity
		FROM amenities
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1 ASC, id ASC
		LIMIT $3
	`
	var rows []amenityRow
	if err := s.db.SelectContext(ctx, &rows, query, vec, threshold, limit); err != nil {
		return nil, fmt.Errorf("search amenities: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, Result{
			Entity: storage.Entity{
				ID:          r.ID,
				Type:        storage.EntityAmenity,
				Name:        r.Name,
				Category:    r.Category,
				Description: r.Description,
			},
			Similarity: r.Similarity,
		})
	}
	return results, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PGVectorStore)(nil)
)
