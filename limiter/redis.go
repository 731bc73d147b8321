package limiter

import (
	"context"
	_ "embed"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/agrosud-co/site-service/types"
)

//go:embed sliding_window.lua
var slidingWindowScript string

// RedisLimiter keeps one sorted set per (route class, identity) so that
// every stateless instance observes the same window. The whole
// trim-add-count sequence runs as one Lua script; counting from the
// calling process would race under concurrent form submissions.
type RedisLimiter struct {
	client    *redis.Client
	scriptSHA string
	now       func() time.Time
}

func NewRedisLimiter(ctx context.Context, url string) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, types.WrapError(err, "parse limiter store url")
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, types.WrapError(err, "ping limiter store")
	}

	sha, err := client.ScriptLoad(pingCtx, slidingWindowScript).Result()
	if err != nil {
		return nil, types.WrapError(err, "load sliding window script")
	}

	return &RedisLimiter{
		client:    client,
		scriptSHA: sha,
		now:       time.Now,
	}, nil
}

func (r *RedisLimiter) Check(ctx context.Context, identity string, class types.RouteClass) (types.RateLimitResult, error) {
	key := class.Prefix + ":" + identity
	nowMs := r.now().UnixMilli()
	windowMs := class.Window.Milliseconds()
	member := uuid.NewString()

	cmd := r.client.EvalSha(ctx, r.scriptSHA, []string{key},
		nowMs,
		windowMs,
		class.Limit,
		member,
	)

	result, err := cmd.Result()
	if err != nil {
		return types.RateLimitResult{}, types.WrapError(types.ErrLimiterStoreUnavailable, err.Error())
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return types.RateLimitResult{}, types.Errorf(types.ErrLimiterStoreUnavailable, "unexpected script reply")
	}

	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	retryMs, _ := values[2].(int64)

	return types.RateLimitResult{
		Allowed:           allowed == 1,
		Remaining:         int(remaining),
		RetryAfterSeconds: ceilSeconds(retryMs),
		Limit:             class.Limit,
	}, nil
}

func (r *RedisLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisLimiter) Close() error {
	return r.client.Close()
}
