package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
)

// ContentCache is a read-through cache local to one process instance. Two
// instances may both miss and load the same key concurrently; the loader is
// idempotent, so the duplicate work is accepted rather than deduplicated.
// Within one instance the last completed load wins.
//
// The key space is the CMS content set, so the map is unbounded on purpose:
// there is no user-controlled cardinality to bound against.
type ContentCache struct {
	logger  types.Logger
	metrics types.MetricsManager
	store   *store
	ttl     time.Duration
	now     func() time.Time
}

func New(logger types.Logger, metrics types.MetricsManager, ttl time.Duration) *ContentCache {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &ContentCache{
		logger:  logger,
		metrics: metrics,
		store:   newStore(),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *ContentCache) GetOrLoad(ctx context.Context, key string, loader types.Loader) (interface{}, error) {
	if key == "" {
		return nil, types.ErrCacheKeyEmpty
	}
	if loader == nil {
		return nil, types.ErrCacheLoaderIsNil
	}

	if value, ok := c.store.Get(key, c.now()); ok {
		c.recordOutcome(key, "hit")
		return value, nil
	}

	value, err := loader(ctx)
	if err == nil {
		c.store.Set(key, value, c.now(), c.ttl)
		c.recordOutcome(key, "load")
		return value, nil
	}

	// Stale fallback: a previously known-good value beats an upstream error.
	if stale, ok := c.store.GetStale(key); ok {
		c.recordOutcome(key, "stale")
		c.logger.Warn("Serving stale cache entry, upstream load failed",
			zap.String("key", key),
			zap.Error(err))
		return stale, nil
	}

	c.recordOutcome(key, "error")
	return nil, err
}

func (c *ContentCache) Invalidate(keys ...string) {
	c.store.Delete(keys...)
	c.logger.Debug("Cache keys invalidated", zap.Strings("keys", keys))
}

func (c *ContentCache) InvalidateAll() {
	c.store.Clear()
	c.logger.Info("Cache fully invalidated")
}

func (c *ContentCache) Size() int {
	return c.store.Len()
}

func (c *ContentCache) recordOutcome(key, outcome string) {
	if c.metrics == nil {
		return
	}

	c.metrics.Counter("content_cache_requests_total", map[string]string{
		"outcome": outcome,
	}).Inc()
}
