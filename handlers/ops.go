package handlers

import (
	"github.com/valyala/fasthttp"

	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

// OpsHandlers expose the operational surface: health, version, and the
// metrics scrape endpoint. All of them skip compression and throttling.
type OpsHandlers struct {
	logger  types.Logger
	health  types.HealthManager
	metrics types.MetricsManager
	info    types.ServiceInfo
}

// MetricsExposer is implemented by backends that can serve a native
// scrape format; others fall back to the JSON dump.
type MetricsExposer interface {
	Handler() fasthttp.RequestHandler
}

func NewOpsHandlers(logger types.Logger, health types.HealthManager, metrics types.MetricsManager, info types.ServiceInfo) *OpsHandlers {
	return &OpsHandlers{
		logger:  logger,
		health:  health,
		metrics: metrics,
		info:    info,
	}
}

func (h *OpsHandlers) Register(router types.HTTPRouter) {
	opsConfig := &types.RouteConfig{
		DisabledMiddlewares: []string{"compression", "rate_limit", "body_limit"},
	}

	router.GET("/health", h.Health, opsConfig)
	router.GET("/version", h.Version, opsConfig)
	router.GET("/metrics", h.Metrics, opsConfig)
}

func (h *OpsHandlers) Health(ctx *fasthttp.RequestCtx) {
	report := h.health.Check(ctx)

	status := fasthttp.StatusOK
	if report.Status == types.StatusUnhealthy {
		status = fasthttp.StatusServiceUnavailable
	}

	utils.WriteJSON(ctx, status, report)
}

func (h *OpsHandlers) Version(ctx *fasthttp.RequestCtx) {
	utils.WriteJSON(ctx, fasthttp.StatusOK, map[string]string{
		"name":    h.info.Name,
		"version": h.info.Version,
	})
}

func (h *OpsHandlers) Metrics(ctx *fasthttp.RequestCtx) {
	if exposer, ok := h.metrics.(MetricsExposer); ok {
		exposer.Handler()(ctx)
		return
	}

	payload, err := h.metrics.GetMetrics()
	if err != nil {
		utils.CreateErrorResponse(ctx, fasthttp.StatusInternalServerError, "Failed to gather metrics")
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json")
	ctx.SetBody(payload)
}
