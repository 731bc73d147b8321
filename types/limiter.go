package types

import (
	"context"
	"time"
)

// IdentityUnknown buckets all requests whose client IP could not be resolved
// from any proxy header. The limiter still applies to that shared bucket.
const IdentityUnknown = "unknown"

type RouteClass struct {
	Name   string
	Prefix string
	Limit  int
	Window time.Duration
}

type RateLimitResult struct {
	Allowed           bool `json:"allowed"`
	Remaining         int  `json:"remaining"`
	RetryAfterSeconds int  `json:"retry_after_seconds"`
	Limit             int  `json:"limit"`
}

type RateLimiter interface {
	Check(ctx context.Context, identity string, class RouteClass) (RateLimitResult, error)
}
