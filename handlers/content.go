package handlers

import (
	"errors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

// ContentHandlers serve the read side of the site. Upstream failures
// that survive the cache's stale fallback surface as one uniform 503;
// clients never see raw upstream errors.
type ContentHandlers struct {
	gateway types.ContentGateway
	logger  types.Logger
}

func NewContentHandlers(gateway types.ContentGateway, logger types.Logger) *ContentHandlers {
	return &ContentHandlers{
		gateway: gateway,
		logger:  logger,
	}
}

func (h *ContentHandlers) Register(router types.HTTPRouter) {
	router.GET("/api/products", h.ListProducts, &types.RouteConfig{})
	router.GET("/api/products/{slug}", h.GetProduct, &types.RouteConfig{})
	router.GET("/api/product-slugs", h.ListProductSlugs, &types.RouteConfig{})
	router.GET("/api/articles", h.ListArticles, &types.RouteConfig{})
	router.GET("/api/articles/{slug}", h.GetArticle, &types.RouteConfig{})
	router.GET("/api/article-slugs", h.ListArticleSlugs, &types.RouteConfig{})
	router.GET("/api/team", h.ListTeam, &types.RouteConfig{})
}

func (h *ContentHandlers) ListProducts(ctx *fasthttp.RequestCtx) {
	products, err := h.gateway.ListProducts(ctx, requestLocale(ctx))
	if err != nil {
		h.serveUpstreamFailure(ctx, err)
		return
	}
	utils.WriteJSON(ctx, fasthttp.StatusOK, map[string]interface{}{"data": products})
}

func (h *ContentHandlers) GetProduct(ctx *fasthttp.RequestCtx) {
	slug, ok := ctx.UserValue("slug").(string)
	if !ok || slug == "" {
		utils.CreateBadRequestResponse(ctx, "Missing product slug")
		return
	}

	product, err := h.gateway.GetProduct(ctx, slug, requestLocale(ctx))
	if err != nil {
		h.serveUpstreamFailure(ctx, err)
		return
	}
	if product == nil {
		utils.CreateNotFoundResponse(ctx)
		return
	}
	utils.WriteJSON(ctx, fasthttp.StatusOK, map[string]interface{}{"data": product})
}

func (h *ContentHandlers) ListProductSlugs(ctx *fasthttp.RequestCtx) {
	slugs, err := h.gateway.ListProductSlugs(ctx)
	if err != nil {
		h.serveUpstreamFailure(ctx, err)
		return
	}
	utils.WriteJSON(ctx, fasthttp.StatusOK, map[string]interface{}{"data": slugs})
}

func (h *ContentHandlers) ListArticles(ctx *fasthttp.RequestCtx) {
	articles, err := h.gateway.ListArticles(ctx, requestLocale(ctx))
	if err != nil {
		h.serveUpstreamFailure(ctx, err)
		return
	}
	utils.WriteJSON(ctx, fasthttp.StatusOK, map[string]interface{}{"data": articles})
}

func (h *ContentHandlers) GetArticle(ctx *fasthttp.RequestCtx) {
	slug, ok := ctx.UserValue("slug").(string)
	if !ok || slug == "" {
		utils.CreateBadRequestResponse(ctx, "Missing article slug")
		return
	}

	article, err := h.gateway.GetArticle(ctx, slug, requestLocale(ctx))
	if err != nil {
		h.serveUpstreamFailure(ctx, err)
		return
	}
	if article == nil {
		utils.CreateNotFoundResponse(ctx)
		return
	}
	utils.WriteJSON(ctx, fasthttp.StatusOK, map[string]interface{}{"data": article})
}

func (h *ContentHandlers) ListArticleSlugs(ctx *fasthttp.RequestCtx) {
	slugs, err := h.gateway.ListArticleSlugs(ctx)
	if err != nil {
		h.serveUpstreamFailure(ctx, err)
		return
	}
	utils.WriteJSON(ctx, fasthttp.StatusOK, map[string]interface{}{"data": slugs})
}

func (h *ContentHandlers) ListTeam(ctx *fasthttp.RequestCtx) {
	team, err := h.gateway.ListTeam(ctx, requestLocale(ctx))
	if err != nil {
		h.serveUpstreamFailure(ctx, err)
		return
	}
	utils.WriteJSON(ctx, fasthttp.StatusOK, map[string]interface{}{"data": team})
}

func (h *ContentHandlers) serveUpstreamFailure(ctx *fasthttp.RequestCtx, err error) {
	if errors.Is(err, types.ErrUpstreamUnavailable) || errors.Is(err, types.ErrUpstreamBadPayload) ||
		errors.Is(err, types.ErrCircuitBreakerOpen) || errors.Is(err, types.ErrClientRequestFailed) {
		h.logger.Warn("Content unavailable", zap.Error(err))
		utils.CreateContentUnavailableResponse(ctx)
		return
	}

	h.logger.Error("Content handler failed", zap.Error(err))
	utils.CreateErrorResponse(ctx, fasthttp.StatusInternalServerError, "An unexpected error occurred")
}

// requestLocale defaults to French, the site's primary audience.
func requestLocale(ctx *fasthttp.RequestCtx) string {
	locale := string(ctx.QueryArgs().Peek("locale"))
	if locale == "en" {
		return "en"
	}
	return "fr"
}
