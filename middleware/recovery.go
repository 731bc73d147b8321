package middleware

import (
	"runtime/debug"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

type RecoveryMiddleware struct {
	logger  types.Logger
	metrics types.MetricsManager
	name    string
	weight  int
}

func NewRecoveryMiddleware(logger types.Logger, metrics types.MetricsManager, weight int) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger:  logger,
		metrics: metrics,
		name:    "recovery",
		weight:  weight,
	}
}

func (m *RecoveryMiddleware) Handle(ctx *fasthttp.RequestCtx, next types.FastHTTPHandler, config *types.RouteConfig) {
	defer func() {
		if recovered := recover(); recovered != nil {
			m.logger.Error("Panic recovered in request handler",
				zap.Any("panic", recovered),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.ByteString("stack", debug.Stack()))

			if m.metrics != nil {
				m.metrics.Counter("panics_recovered_total", nil).Inc()
			}

			utils.CreateErrorResponse(ctx, fasthttp.StatusInternalServerError, "Internal server error")
		}
	}()

	next(ctx)
}

func (m *RecoveryMiddleware) Name() string {
	return m.name
}

func (m *RecoveryMiddleware) Weight() int {
	return m.weight
}
