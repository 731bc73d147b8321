package middleware

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

const DefaultMaxBodySize = 64 * 1024

type BodyLimitConfig struct {
	MaxBodySize int `json:"max_body_size" yaml:"max_body_size"`
}

// BodyLimitMiddleware caps request bodies. Lead forms carry at most a
// few kilobytes of text; anything larger is noise or abuse.
type BodyLimitMiddleware struct {
	logger      types.Logger
	maxBodySize int
	name        string
	weight      int
}

func NewBodyLimitMiddleware(logger types.Logger, item *types.MiddlewareItemConfig) *BodyLimitMiddleware {
	bodyConfig := &BodyLimitConfig{MaxBodySize: DefaultMaxBodySize}

	if item.Params != nil {
		if err := utils.UnmarshalConfig(item.Params, bodyConfig); err != nil {
			logger.Warn("Invalid body limit params, using defaults", zap.Error(err))
			bodyConfig.MaxBodySize = DefaultMaxBodySize
		}
	}
	if bodyConfig.MaxBodySize <= 0 {
		bodyConfig.MaxBodySize = DefaultMaxBodySize
	}

	return &BodyLimitMiddleware{
		logger:      logger,
		maxBodySize: bodyConfig.MaxBodySize,
		name:        "body_limit",
		weight:      item.Weight,
	}
}

func (m *BodyLimitMiddleware) Handle(ctx *fasthttp.RequestCtx, next types.FastHTTPHandler, config *types.RouteConfig) {
	if len(ctx.Request.Body()) > m.maxBodySize {
		m.logger.Warn("Request body too large",
			zap.ByteString("path", ctx.Path()),
			zap.Int("size", len(ctx.Request.Body())),
			zap.Int("limit", m.maxBodySize))
		utils.CreateErrorResponse(ctx, fasthttp.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	next(ctx)
}

func (m *BodyLimitMiddleware) Name() string {
	return m.name
}

func (m *BodyLimitMiddleware) Weight() int {
	return m.weight
}
