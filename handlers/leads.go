package handlers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/limiter"
	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

// LeadHandlers accept the three public forms. Pipeline per request:
// parse → validate → captcha → persist → notify. Rate limiting and
// body caps run in the middleware chain before the handler is reached.
// Notification failures are logged, never surfaced: the lead is already
// saved.
type LeadHandlers struct {
	logger   types.Logger
	metrics  types.MetricsManager
	store    types.LeadStore
	notifier types.Notifier
	captcha  types.CaptchaVerifier
	validate *validator.Validate
}

type contactPayload struct {
	Name         string `json:"name" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Company      string `json:"company" validate:"max=200"`
	Country      string `json:"country" validate:"max=100"`
	Phone        string `json:"phone" validate:"max=50"`
	Message      string `json:"message" validate:"required,max=5000"`
	Locale       string `json:"locale" validate:"omitempty,oneof=fr en"`
	CaptchaToken string `json:"captcha_token"`
}

type rfqPayload struct {
	Name         string `json:"name" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Company      string `json:"company" validate:"required,max=200"`
	Country      string `json:"country" validate:"max=100"`
	Phone        string `json:"phone" validate:"max=50"`
	Product      string `json:"product" validate:"required,max=200"`
	Quantity     string `json:"quantity" validate:"required,max=100"`
	Message      string `json:"message" validate:"max=5000"`
	Locale       string `json:"locale" validate:"omitempty,oneof=fr en"`
	CaptchaToken string `json:"captcha_token"`
}

type newsletterPayload struct {
	Email        string `json:"email" validate:"required,email"`
	Locale       string `json:"locale" validate:"omitempty,oneof=fr en"`
	CaptchaToken string `json:"captcha_token"`
}

func NewLeadHandlers(logger types.Logger, metrics types.MetricsManager, store types.LeadStore, notifier types.Notifier, captcha types.CaptchaVerifier) *LeadHandlers {
	return &LeadHandlers{
		logger:   logger,
		metrics:  metrics,
		store:    store,
		notifier: notifier,
		captcha:  captcha,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *LeadHandlers) Register(router types.HTTPRouter) {
	router.POST("/api/contact", h.Contact, &types.RouteConfig{RateLimitClass: "contact"})
	router.POST("/api/rfq", h.RFQ, &types.RouteConfig{RateLimitClass: "rfq"})
	router.POST("/api/newsletter", h.Newsletter, &types.RouteConfig{RateLimitClass: "newsletter"})
}

func (h *LeadHandlers) Contact(ctx *fasthttp.RequestCtx) {
	var payload contactPayload
	if !h.parse(ctx, &payload) {
		return
	}

	h.submit(ctx, payload.CaptchaToken, types.Lead{
		Kind:    types.LeadKindContact,
		Name:    payload.Name,
		Email:   payload.Email,
		Company: payload.Company,
		Country: payload.Country,
		Phone:   payload.Phone,
		Message: payload.Message,
		Locale:  normalizeLocale(payload.Locale),
	})
}

func (h *LeadHandlers) RFQ(ctx *fasthttp.RequestCtx) {
	var payload rfqPayload
	if !h.parse(ctx, &payload) {
		return
	}

	h.submit(ctx, payload.CaptchaToken, types.Lead{
		Kind:     types.LeadKindRFQ,
		Name:     payload.Name,
		Email:    payload.Email,
		Company:  payload.Company,
		Country:  payload.Country,
		Phone:    payload.Phone,
		Product:  payload.Product,
		Quantity: payload.Quantity,
		Message:  payload.Message,
		Locale:   normalizeLocale(payload.Locale),
	})
}

func (h *LeadHandlers) Newsletter(ctx *fasthttp.RequestCtx) {
	var payload newsletterPayload
	if !h.parse(ctx, &payload) {
		return
	}

	h.submit(ctx, payload.CaptchaToken, types.Lead{
		Kind:   types.LeadKindNewsletter,
		Email:  payload.Email,
		Locale: normalizeLocale(payload.Locale),
	})
}

func (h *LeadHandlers) parse(ctx *fasthttp.RequestCtx, payload interface{}) bool {
	if err := utilsUnmarshalBody(ctx, payload); err != nil {
		utils.CreateBadRequestResponse(ctx, "Malformed JSON body")
		return false
	}

	if err := h.validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			first := validationErrors[0]
			utils.CreateBadRequestResponse(ctx, "Invalid field: "+first.Field())
			return false
		}
		utils.CreateBadRequestResponse(ctx, "Invalid payload")
		return false
	}

	return true
}

func (h *LeadHandlers) submit(ctx *fasthttp.RequestCtx, captchaToken string, lead types.Lead) {
	lead.ClientIP = limiter.Identify(ctx)
	lead.CreatedAt = time.Now()

	if err := h.captcha.Verify(ctx, captchaToken, lead.ClientIP); err != nil {
		if errors.Is(err, types.ErrCaptchaRejected) {
			h.recordOutcome(lead.Kind, "captcha_rejected")
			utils.CreateErrorResponse(ctx, fasthttp.StatusForbidden, "Captcha verification failed")
			return
		}
		// Provider outage: same availability stance as the rate limiter.
		h.logger.Warn("Captcha provider unavailable, accepting submission",
			zap.String("kind", lead.Kind),
			zap.Error(err))
	}

	id, err := h.store.SaveLead(ctx, lead)
	if err != nil {
		h.logger.ErrorWithErrStack("Failed to persist lead", err,
			zap.String("kind", lead.Kind))
		h.recordOutcome(lead.Kind, "store_failed")
		utils.CreateErrorResponse(ctx, fasthttp.StatusInternalServerError, "Could not save your request")
		return
	}
	lead.ID = id

	if err := h.notifier.NotifyLead(ctx, lead); err != nil {
		h.logger.Warn("Lead notification failed",
			zap.String("lead_id", id),
			zap.String("kind", lead.Kind),
			zap.Error(err))
	}

	h.recordOutcome(lead.Kind, "accepted")
	utils.WriteJSON(ctx, fasthttp.StatusCreated, map[string]interface{}{
		"id":     id,
		"status": "received",
	})
}

func (h *LeadHandlers) recordOutcome(kind, outcome string) {
	if h.metrics == nil {
		return
	}
	h.metrics.Counter("lead_submissions_total", map[string]string{
		"kind":    kind,
		"outcome": outcome,
	}).Inc()
}

func utilsUnmarshalBody(ctx *fasthttp.RequestCtx, payload interface{}) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return types.NewErrorf("empty body")
	}
	return utils.UnmarshalAny(body, payload)
}

func normalizeLocale(locale string) string {
	if locale == "en" {
		return "en"
	}
	return "fr"
}
