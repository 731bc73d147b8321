package captcha

import (
	"context"
	"net/url"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

func New(logger types.Logger, caller types.HTTPCaller, config *types.CaptchaConfig) types.CaptchaVerifier {
	if !config.Enabled {
		return &DisabledVerifier{}
	}
	return NewHTTPVerifier(logger, caller, config)
}

// HTTPVerifier checks submitted tokens against a Turnstile-compatible
// verification endpoint. Provider outages are reported distinctly from
// rejections so the handler can decide which ones block the submission.
type HTTPVerifier struct {
	logger types.Logger
	caller types.HTTPCaller
	config *types.CaptchaConfig
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func NewHTTPVerifier(logger types.Logger, caller types.HTTPCaller, config *types.CaptchaConfig) *HTTPVerifier {
	return &HTTPVerifier{
		logger: logger,
		caller: caller,
		config: config,
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if token == "" {
		return types.Errorf(types.ErrCaptchaRejected, "missing token")
	}

	form := url.Values{}
	form.Set("secret", v.config.Secret)
	form.Set("response", token)
	if remoteIP != "" && remoteIP != types.IdentityUnknown {
		form.Set("remoteip", remoteIP)
	}

	opts := &types.CallOptions{
		Timeout: v.config.Timeout,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
	}

	body, statusCode, err := v.caller.Call(fasthttp.MethodPost, "", []byte(form.Encode()), opts)
	if err != nil {
		return types.Errorf(types.ErrCaptchaUnavailable, "%v", err)
	}
	if statusCode != fasthttp.StatusOK {
		return types.Errorf(types.ErrCaptchaUnavailable, "HTTP %d", statusCode)
	}

	var result verifyResponse
	if err := utils.Unmarshal(body, &result); err != nil {
		return types.Errorf(types.ErrCaptchaUnavailable, "decode: %v", err)
	}

	if !result.Success {
		v.logger.Debug("Captcha rejected",
			zap.String("codes", strings.Join(result.ErrorCodes, ",")))
		return types.Errorf(types.ErrCaptchaRejected, "%s", strings.Join(result.ErrorCodes, ","))
	}

	return nil
}

type DisabledVerifier struct{}

func (v *DisabledVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	return nil
}
