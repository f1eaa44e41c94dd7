package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryClient implements Client with an in-process cache. Suitable for
// single-instance deployments and tests.
type MemoryClient struct {
	cache *gocache.Cache
}

// NewMemoryClient creates a new in-process cache client. defaultTTL applies
// when Set is called with a non-positive TTL.
func NewMemoryClient(defaultTTL time.Duration) *MemoryClient {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &MemoryClient{
		cache: gocache.New(defaultTTL, 10*time.Minute),
	}
}

// Get retrieves a value from cache.
func (c *MemoryClient) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

// Set stores a value in cache with TTL.
func (c *MemoryClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
	return nil
}

// Delete removes a value from cache.
func (c *MemoryClient) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

// Close is a no-op for the in-process cache.
func (c *MemoryClient) Close() error {
	return nil
}
