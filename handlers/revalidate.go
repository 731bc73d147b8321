package handlers

import (
	"crypto/subtle"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

// RevalidateHandler lets the CMS webhook drop cached content after an
// editor publishes. Token comparison is constant-time; the token lives
// in config, not in the CMS payload.
type RevalidateHandler struct {
	logger types.Logger
	cache  types.ContentCache
	token  string
}

type revalidatePayload struct {
	Keys []string `json:"keys"`
}

func NewRevalidateHandler(logger types.Logger, cache types.ContentCache, config *types.RevalidateConfig) *RevalidateHandler {
	return &RevalidateHandler{
		logger: logger,
		cache:  cache,
		token:  config.Token,
	}
}

func (h *RevalidateHandler) Register(router types.HTTPRouter) {
	router.POST("/api/revalidate", h.Revalidate, &types.RouteConfig{
		DisabledMiddlewares: []string{"compression"},
	})
}

func (h *RevalidateHandler) Revalidate(ctx *fasthttp.RequestCtx) {
	if !h.authorized(ctx) {
		h.logger.Warn("Revalidate called with a bad token",
			zap.ByteString("remote", ctx.RequestURI()))
		utils.CreateUnauthorizedResponse(ctx)
		return
	}

	var payload revalidatePayload
	if body := ctx.PostBody(); len(body) > 0 {
		if err := utils.Unmarshal(body, &payload); err != nil {
			utils.CreateBadRequestResponse(ctx, "Malformed JSON body")
			return
		}
	}

	if len(payload.Keys) == 0 {
		h.cache.InvalidateAll()
		h.logger.Info("Content cache fully invalidated")
	} else {
		h.cache.Invalidate(payload.Keys...)
		h.logger.Info("Content cache keys invalidated",
			zap.Strings("keys", payload.Keys))
	}

	utils.WriteJSON(ctx, fasthttp.StatusOK, map[string]interface{}{
		"status": "revalidated",
		"keys":   payload.Keys,
	})
}

func (h *RevalidateHandler) authorized(ctx *fasthttp.RequestCtx) bool {
	if h.token == "" {
		return false
	}

	auth := string(ctx.Request.Header.Peek("Authorization"))
	presented, found := strings.CutPrefix(auth, "Bearer ")
	if !found {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(presented), []byte(h.token)) == 1
}
