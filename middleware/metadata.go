package middleware

import (
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/agrosud-co/site-service/types"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// MetadataMiddleware stamps every request with an id, reusing the one a
// proxy already assigned when present.
type MetadataMiddleware struct {
	logger types.Logger
	name   string
	weight int
}

func NewMetadataMiddleware(logger types.Logger, weight int) *MetadataMiddleware {
	return &MetadataMiddleware{
		logger: logger,
		name:   "metadata",
		weight: weight,
	}
}

func (m *MetadataMiddleware) Handle(ctx *fasthttp.RequestCtx, next types.FastHTTPHandler, config *types.RouteConfig) {
	requestID := string(ctx.Request.Header.Peek(RequestIDHeader))
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx.SetUserValue(RequestIDKey, requestID)
	ctx.Response.Header.Set(RequestIDHeader, requestID)

	next(ctx)
}

func (m *MetadataMiddleware) Name() string {
	return m.name
}

func (m *MetadataMiddleware) Weight() int {
	return m.weight
}
