package middleware

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/limiter"
	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

// RateLimitMiddleware throttles routes that declare a rate limit class.
// A limiter store failure lets the request through: losing abuse
// precision during an outage beats blocking legitimate leads.
type RateLimitMiddleware struct {
	logger  types.Logger
	metrics types.MetricsManager
	limiter types.RateLimiter
	classes RouteClassResolver
	name    string
	weight  int
}

func NewRateLimitMiddleware(logger types.Logger, metrics types.MetricsManager, rateLimiter types.RateLimiter, classes RouteClassResolver, weight int) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		logger:  logger,
		metrics: metrics,
		limiter: rateLimiter,
		classes: classes,
		name:    "rate_limit",
		weight:  weight,
	}
}

func (m *RateLimitMiddleware) Handle(ctx *fasthttp.RequestCtx, next types.FastHTTPHandler, config *types.RouteConfig) {
	if config == nil || config.RateLimitClass == "" || m.limiter == nil {
		next(ctx)
		return
	}

	class, err := m.classes.Get(config.RateLimitClass)
	if err != nil {
		m.logger.Error("Route references unknown rate limit class",
			zap.String("class", config.RateLimitClass),
			zap.ByteString("path", ctx.Path()))
		next(ctx)
		return
	}

	identity := limiter.Identify(ctx)

	result, err := m.limiter.Check(ctx, identity, class)
	if err != nil {
		m.logger.Warn("Rate limiter unavailable, letting request through",
			zap.String("class", class.Name),
			zap.String("identity", identity),
			zap.Error(err))
		m.recordOutcome(class.Name, "error")
		next(ctx)
		return
	}

	if !result.Allowed {
		m.logger.Info("Request throttled",
			zap.String("class", class.Name),
			zap.String("identity", identity),
			zap.Int("retry_after", result.RetryAfterSeconds))
		m.recordOutcome(class.Name, "denied")
		utils.CreateRateLimitResponse(ctx, result.Limit, result.Remaining, result.RetryAfterSeconds)
		return
	}

	m.recordOutcome(class.Name, "allowed")
	next(ctx)
}

func (m *RateLimitMiddleware) recordOutcome(class, outcome string) {
	if m.metrics == nil {
		return
	}
	m.metrics.Counter("rate_limit_checks_total", map[string]string{
		"class":   class,
		"outcome": outcome,
	}).Inc()
}

func (m *RateLimitMiddleware) Name() string {
	return m.name
}

func (m *RateLimitMiddleware) Weight() int {
	return m.weight
}
