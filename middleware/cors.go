package middleware

import (
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers"`
	MaxAge         int      `json:"max_age" yaml:"max_age"`
}

type CORSMiddleware struct {
	logger         types.Logger
	allowedOrigins []string
	allowAll       bool
	methods        string
	headers        string
	maxAge         string
	name           string
	weight         int
}

func NewCORSMiddleware(logger types.Logger, item *types.MiddlewareItemConfig) *CORSMiddleware {
	corsConfig := &CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}

	if item.Params != nil {
		if err := utils.UnmarshalConfig(item.Params, corsConfig); err != nil {
			logger.Warn("Invalid CORS params, using defaults", zap.Error(err))
		}
	}

	allowAll := false
	for _, origin := range corsConfig.AllowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}

	return &CORSMiddleware{
		logger:         logger,
		allowedOrigins: corsConfig.AllowedOrigins,
		allowAll:       allowAll,
		methods:        strings.Join(corsConfig.AllowedMethods, ", "),
		headers:        strings.Join(corsConfig.AllowedHeaders, ", "),
		maxAge:         strconv.Itoa(corsConfig.MaxAge),
		name:           "cors",
		weight:         item.Weight,
	}
}

func (m *CORSMiddleware) Handle(ctx *fasthttp.RequestCtx, next types.FastHTTPHandler, config *types.RouteConfig) {
	origin := string(ctx.Request.Header.Peek("Origin"))
	if origin != "" {
		if allowed := m.resolveOrigin(origin); allowed != "" {
			ctx.Response.Header.Set("Access-Control-Allow-Origin", allowed)
			ctx.Response.Header.Set("Vary", "Origin")
		}
	}

	if string(ctx.Method()) == fasthttp.MethodOptions {
		ctx.Response.Header.Set("Access-Control-Allow-Methods", m.methods)
		ctx.Response.Header.Set("Access-Control-Allow-Headers", m.headers)
		ctx.Response.Header.Set("Access-Control-Max-Age", m.maxAge)
		ctx.SetStatusCode(fasthttp.StatusNoContent)
		return
	}

	next(ctx)
}

func (m *CORSMiddleware) resolveOrigin(origin string) string {
	if m.allowAll {
		return "*"
	}
	for _, allowed := range m.allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

func (m *CORSMiddleware) Name() string {
	return m.name
}

func (m *CORSMiddleware) Weight() int {
	return m.weight
}
