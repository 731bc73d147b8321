package limiter

import (
	"context"

	"github.com/agrosud-co/site-service/types"
)

func New(ctx context.Context, config *types.LimiterConfig) (types.RateLimiter, error) {
	switch config.Type {
	case "redis":
		return NewRedisLimiter(ctx, config.URL)
	case "memory":
		return NewMemoryLimiter(), nil
	default:
		return nil, types.Errorf(types.ErrLimiterTypeUnknown, "%s", config.Type)
	}
}
