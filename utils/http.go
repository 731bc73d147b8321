package utils

import (
	"strconv"

	"github.com/valyala/fasthttp"
)

func WriteJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) error {
	data, err := Marshal(payload)
	if err != nil {
		CreateErrorResponse(ctx, fasthttp.StatusInternalServerError, "An unexpected error occurred")
		return err
	}

	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
	return nil
}

func CreateErrorResponse(ctx *fasthttp.RequestCtx, status int, message string) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"error":` + strconv.Quote(fasthttp.StatusMessage(status)) +
		`,"message":` + strconv.Quote(message) + `}`)
}

func CreateBadRequestResponse(ctx *fasthttp.RequestCtx, message string) {
	ctx.SetStatusCode(fasthttp.StatusBadRequest)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"error":"Bad Request","message":` + strconv.Quote(message) + `}`)
}

func CreateNotFoundResponse(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"error":"Not Found","message":"No matching resource"}`)
}

func CreateUnauthorizedResponse(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"error":"Unauthorized","message":"Authentication required"}`)
}

// CreateContentUnavailableResponse is the only user-visible upstream failure
// shape: no raw upstream error ever reaches a client.
func CreateContentUnavailableResponse(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"error":"Service Unavailable","message":"Content temporarily unavailable"}`)
}

func CreateRateLimitResponse(ctx *fasthttp.RequestCtx, limit, remaining, retryAfterSeconds int) {
	ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
	ctx.SetContentType("application/json")
	ctx.Response.Header.Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	ctx.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	ctx.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	ctx.SetBodyString(`{"error":"Rate limit exceeded","message":"Too many requests","retry_after":` +
		strconv.Itoa(retryAfterSeconds) + `}`)
}
