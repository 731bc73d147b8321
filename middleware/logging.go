package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
)

type LoggingMiddleware struct {
	logger  types.Logger
	metrics types.MetricsManager
	name    string
	weight  int
}

func NewLoggingMiddleware(logger types.Logger, metrics types.MetricsManager, weight int) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger:  logger,
		metrics: metrics,
		name:    "logging",
		weight:  weight,
	}
}

func (m *LoggingMiddleware) Handle(ctx *fasthttp.RequestCtx, next types.FastHTTPHandler, config *types.RouteConfig) {
	start := time.Now()

	next(ctx)

	duration := time.Since(start)
	statusCode := ctx.Response.StatusCode()

	fields := []zap.Field{
		zap.ByteString("method", ctx.Method()),
		zap.ByteString("path", ctx.Path()),
		zap.Int("status", statusCode),
		zap.Duration("duration", duration),
		zap.Int("size", len(ctx.Response.Body())),
	}
	if requestID, ok := ctx.UserValue(RequestIDKey).(string); ok {
		fields = append(fields, zap.String(RequestIDKey, requestID))
	}

	switch {
	case statusCode >= 500:
		m.logger.Error("Request failed", fields...)
	case statusCode >= 400:
		m.logger.Warn("Request rejected", fields...)
	default:
		m.logger.Info("Request served", fields...)
	}

	if m.metrics != nil {
		m.metrics.Histogram("http_request_duration_seconds", nil, map[string]string{
			"method": string(ctx.Method()),
		}).ObserveDuration(start)
		m.metrics.Counter("http_requests_total", map[string]string{
			"method": string(ctx.Method()),
			"status": statusClass(statusCode),
		}).Inc()
	}
}

func (m *LoggingMiddleware) Name() string {
	return m.name
}

func (m *LoggingMiddleware) Weight() int {
	return m.weight
}

func statusClass(statusCode int) string {
	switch {
	case statusCode >= 500:
		return "5xx"
	case statusCode >= 400:
		return "4xx"
	case statusCode >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
