package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/cache"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/observability"
)

// CachedEmbedder decorates an Embedder with a cache keyed on the hash of
// model and input text. The provider is deterministic for identical input,
// so cached vectors never go stale within the TTL window.
type CachedEmbedder struct {
	inner  Embedder
	cache  cache.Client
	ttl    time.Duration
	logger *observability.Logger
}

// NewCachedEmbedder wraps an embedder with a cache.
func NewCachedEmbedder(inner Embedder, cacheClient cache.Client, ttl time.Duration, logger *observability.Logger) *CachedEmbedder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &CachedEmbedder{
		inner:  inner,
		cache:  cacheClient,
		ttl:    ttl,
		logger: logger.WithComponent("embedding-cache"),
	}
}

// EmbedSingle returns a cached vector when available, delegating to the
// wrapped embedder on a miss. Cache failures are logged and ignored; the
// embedding call itself is authoritative.
func (c *CachedEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	if data, err := c.cache.Get(ctx, key); err == nil {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil && len(vec) == c.inner.Dimension() {
			return vec, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn().Err(err).Msg("embedding cache read failed")
	}

	vec, err := c.inner.EmbedSingle(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn().Err(err).Msg("embedding cache write failed")
		}
	}

	return vec, nil
}

// Model returns the wrapped embedder's model.
func (c *CachedEmbedder) Model() string {
	return c.inner.Model()
}

// Dimension returns the wrapped embedder's dimension.
func (c *CachedEmbedder) Dimension() int {
	return c.inner.Dimension()
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(c.inner.Model() + "\x00" + text))
	return cache.Key("emb", hex.EncodeToString(sum[:]))
}

var _ Embedder = (*CachedEmbedder)(nil)
