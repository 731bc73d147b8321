package types

import (
	"context"
	"time"
)

// Loader fetches a value from the upstream source on a cache miss or expiry.
type Loader func(ctx context.Context) (interface{}, error)

type ContentCache interface {
	GetOrLoad(ctx context.Context, key string, loader Loader) (interface{}, error)
	Invalidate(keys ...string)
	InvalidateAll()
}

// CacheEntry stays in the map past ExpiresAt so a stale value can be served
// when the upstream fails. Callers always receive the value, never the entry.
type CacheEntry struct {
	Value     interface{}
	StoredAt  time.Time
	ExpiresAt time.Time
}

func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
