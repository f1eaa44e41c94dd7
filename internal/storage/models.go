// Package storage provides domain models and Postgres repositories for the travel engine.
package storage

import (
	"time"

	"github.com/google/uuid"
)

// EntityType identifies the kind of travel entity a record describes.
type EntityType string

// Entity types known to the engine.
const (
	EntityDestination EntityType = "destination"
	EntityProperty    EntityType = "property"
	EntityCategory    EntityType = "category"
	EntityAmenity     EntityType = "amenity"
)

// AllEntityTypes lists every entity type in stable order.
func AllEntityTypes() []EntityType {
	return []EntityType{EntityDestination, EntityProperty, EntityCategory, EntityAmenity}
}

// Entity is the unified searchable record every travel entity reduces to.
// Fields that do not apply to a given type stay at their zero value.
// An Entity without an Embedding is excluded from similarity search.
type Entity struct {
	ID          uuid.UUID
	Type        EntityType
	Name        string
	Description string

	// ParentID links a property to its destination; uuid.Nil otherwise.
	ParentID uuid.UUID

	// Region and Climate describe destinations; Category describes the
	// grouping of properties and amenities (e.g. "resort", "wellness").
	Region   string
	Climate  string
	Category string

	// Tags carry destination-type, activity, or amenity tags used for
	// preference matching.
	Tags []string

	// BestSeasons holds lowercase season names the entity suits best.
	BestSeasons []string

	// Popularity is a stored popularity index in [0, 1]; 0 means unknown.
	Popularity float64

	// DailyCost is the estimated cost per day (destinations) or per night
	// (properties) in the default currency; 0 means unknown.
	DailyCost float64

	// StarRating in [0, 5] for properties; 0 means unrated.
	StarRating float64

	// Capacity is the guest capacity for properties; 0 means unknown.
	Capacity int

	Embedding []float32
}

// HasEmbedding reports whether the entity can take part in similarity search.
func (e *Entity) HasEmbedding() bool {
	return len(e.Embedding) > 0
}

// User holds the basic profile fields used for context framing.
type User struct {
	ID              uuid.UUID `db:"id"`
	Name            string    `db:"name"`
	StatedBudget    float64   `db:"stated_budget"`
	StatedInterests []string  `db:"stated_interests"`
	ClimatePrefs    []string  `db:"climate_prefs"`
	CreatedAt       time.Time `db:"created_at"`
}

// ProfileRecord is the persisted form of a preference profile. The profile
// body is stored as a JSONB document; concurrent writers resolve by
// last-write-wins on the updated_at column.
type ProfileRecord struct {
	UserID    uuid.UUID `db:"user_id"`
	Document  []byte    `db:"document"`
	UpdatedAt time.Time `db:"updated_at"`
}
