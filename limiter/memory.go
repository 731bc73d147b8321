package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/agrosud-co/site-service/types"
)

// MemoryLimiter is a single-process sliding window used when no shared
// store is configured. It cannot coordinate across instances, so it is
// only suitable for tests and single-node deployments.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]int64
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string][]int64),
		now:     time.Now,
	}
}

func (m *MemoryLimiter) Check(ctx context.Context, identity string, class types.RouteClass) (types.RateLimitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := class.Prefix + ":" + identity
	nowMs := m.now().UnixMilli()
	windowMs := class.Window.Milliseconds()
	cutoff := nowMs - windowMs

	kept := m.windows[key][:0]
	for _, ts := range m.windows[key] {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, nowMs)
	m.windows[key] = kept

	count := len(kept)
	if count <= class.Limit {
		return types.RateLimitResult{
			Allowed:   true,
			Remaining: class.Limit - count,
			Limit:     class.Limit,
		}, nil
	}

	retryMs := kept[0] + windowMs - nowMs
	return types.RateLimitResult{
		Allowed:           false,
		Remaining:         0,
		RetryAfterSeconds: ceilSeconds(retryMs),
		Limit:             class.Limit,
	}, nil
}

func ceilSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}
