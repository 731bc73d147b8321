package types

import (
	"time"

	"github.com/valyala/fasthttp"
)

type FastHTTPHandler func(ctx *fasthttp.RequestCtx)

type HTTPRouter interface {
	Add(method, path string, handler FastHTTPHandler, config *RouteConfig)
	GET(path string, handler FastHTTPHandler, config *RouteConfig)
	POST(path string, handler FastHTTPHandler, config *RouteConfig)
	Lookup(method, path string) (FastHTTPHandler, *RouteConfig, map[string]string, bool)
}

// RouteConfig carries per-route middleware toggles. RateLimitClass names the
// limiter route class guarding the route; empty means unthrottled.
type RouteConfig struct {
	RateLimitClass      string
	DisabledMiddlewares []string
	Timeout             time.Duration
}

type MiddlewareManager interface {
	RegisterMiddlewares() error
	Register(middleware Middleware) error
	Execute(ctx *fasthttp.RequestCtx, handler FastHTTPHandler, config *RouteConfig)
}

type Middleware interface {
	Handle(ctx *fasthttp.RequestCtx, next FastHTTPHandler, config *RouteConfig)
	Name() string
	Weight() int
}

type MiddlewareEntry struct {
	Name       string
	Middleware Middleware
	Weight     int
}
