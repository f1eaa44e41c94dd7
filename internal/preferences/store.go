package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/cache"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/observability"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// SQLStore persists profiles as JSONB documents through the storage layer.
type SQLStore struct {
	repo *storage.ProfileRepository
}

// NewSQLStore creates a SQL-backed profile store.
func NewSQLStore(repo *storage.ProfileRepository) *SQLStore {
	return &SQLStore{repo: repo}
}

// Load retrieves and decodes a profile document.
func (s *SQLStore) Load(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	rec, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := json.Unmarshal(rec.Document, &profile); err != nil {
		return nil, fmt.Errorf("decode profile document: %w", err)
	}
	profile.UserID = userID
	profile.ensureMaps()
	return &profile, nil
}

// Save encodes and upserts a profile document.
func (s *SQLStore) Save(ctx context.Context, profile *Profile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile document: %w", err)
	}
	return s.repo.Save(ctx, &storage.ProfileRecord{
		UserID:    profile.UserID,
		Document:  doc,
		UpdatedAt: profile.UpdatedAt,
	})
}

// MemoryStore keeps profiles in process memory. Used in tests and for
// single-node deployments without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID][]byte
}

// NewMemoryStore creates an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: map[uuid.UUID][]byte{}}
}

// Load returns a deep copy of the stored profile.
func (s *MemoryStore) Load(_ context.Context, userID uuid.UUID) (*Profile, error) {
	s.mu.RLock()
	doc, ok := s.profiles[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}

	var profile Profile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return nil, fmt.Errorf("decode profile document: %w", err)
	}
	profile.ensureMaps()
	return &profile, nil
}

// Save stores a deep copy of the profile.
func (s *MemoryStore) Save(_ context.Context, profile *Profile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile document: %w", err)
	}
	s.mu.Lock()
	s.profiles[profile.UserID] = doc
	s.mu.Unlock()
	return nil
}

// CachedStore wraps another store with a read-through cache so hot profiles
// skip the database on every recommendation. Writes invalidate the cached
// entry. Cache failures fall through to the inner store.
type CachedStore struct {
	inner  Store
	cache  cache.Client
	ttl    time.Duration
	logger *observability.Logger
}

// NewCachedStore wraps inner with a cache layer.
func NewCachedStore(inner Store, client cache.Client, ttl time.Duration, logger *observability.Logger) *CachedStore {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &CachedStore{inner: inner, cache: client, ttl: ttl, logger: logger.WithComponent("profile_cache")}
}

func (s *CachedStore) key(userID uuid.UUID) string {
	return cache.UserKey(userID.String(), "profile")
}

// Load checks the cache before hitting the inner store.
func (s *CachedStore) Load(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	if doc, err := s.cache.Get(ctx, s.key(userID)); err == nil {
		var profile Profile
		if err := json.Unmarshal(doc, &profile); err == nil {
			profile.ensureMaps()
			return &profile, nil
		}
		// Corrupt entry, fall through to the inner store.
		_ = s.cache.Delete(ctx, s.key(userID))
	}

	profile, err := s.inner.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc, err := json.Marshal(profile); err == nil {
		if err := s.cache.Set(ctx, s.key(userID), doc, s.ttl); err != nil {
			s.logger.Debug().Err(err).Msg("Profile cache set failed")
		}
	}
	return profile, nil
}

// Save writes through to the inner store and invalidates the cache entry.
func (s *CachedStore) Save(ctx context.Context, profile *Profile) error {
	if err := s.inner.Save(ctx, profile); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, s.key(profile.UserID)); err != nil {
		s.logger.Debug().Err(err).Msg("Profile cache invalidation failed")
	}
	return nil
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*CachedStore)(nil)
)
