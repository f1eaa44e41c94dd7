package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Common errors.
var (
	ErrNotFound = errors.New("record not found")
)

// Connect opens a Postgres connection pool.
func Connect(dsn string, maxOpen, maxIdle int, connMaxLifetime time.Duration) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)

	return db, nil
}

// UserRepository reads basic user profile fields.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID              uuid.UUID       `db:"id"`
	Name            string          `db:"name"`
	StatedBudget    sql.NullFloat64 `db:"stated_budget"`
	StatedInterests pq.StringArray  `db:"stated_interests"`
	ClimatePrefs    pq.StringArray  `db:"climate_prefs"`
	CreatedAt       time.Time       `db:"created_at"`
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, name, stated_budget, stated_interests, climate_prefs, created_at
		FROM users WHERE id = $1
	`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user := &User{
		ID:              row.ID,
		Name:            row.Name,
		StatedInterests: row.StatedInterests,
		ClimatePrefs:    row.ClimatePrefs,
		CreatedAt:       row.CreatedAt,
	}
	if row.StatedBudget.Valid {
		user.StatedBudget = row.StatedBudget.Float64
	}
	return user, nil
}

// ProfileRepository persists preference profiles as JSONB documents.
//
// Writes are last-write-wins: two concurrent read-modify-write cycles for the
// same user do not merge, the later Save overwrites. Callers needing stronger
// guarantees must serialize per user.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves the stored profile document for a user.
func (r *ProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*ProfileRecord, error) {
	query := `
		SELECT user_id, document, updated_at
		FROM preference_profiles WHERE user_id = $1
	`
	rec := &ProfileRecord{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&rec.UserID, &rec.Document, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return rec, nil
}

// Save upserts the profile document for a user.
func (r *ProfileRepository) Save(ctx context.Context, rec *ProfileRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO preference_profiles (user_id, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, rec.UserID, rec.Document, rec.UpdatedAt); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// InteractionRepository appends raw interaction events for later auditing.
type InteractionRepository struct {
	db *sqlx.DB
}

// NewInteractionRepository creates a new interaction repository.
func NewInteractionRepository(db *sqlx.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Log records an interaction event. Failures are reported but carry no
// transactional weight with the originating request.
func (r *InteractionRepository) Log(ctx context.Context, userID uuid.UUID, kind string, entityID uuid.UUID) error {
	query := `
		INSERT INTO interaction_events (id, user_id, kind, entity_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, uuid.New(), userID, kind, entityID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("log interaction: %w", err)
	}
	return nil
}
