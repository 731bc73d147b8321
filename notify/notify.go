package notify

import (
	"context"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
)

func New(logger types.Logger, caller types.HTTPCaller, config *types.NotifyConfig) (types.Notifier, error) {
	switch config.Type {
	case "http":
		return NewWebhookNotifier(logger, caller, config), nil
	case "noop":
		return NewNoopNotifier(logger), nil
	default:
		return nil, types.Errorf(types.ErrNotifierTypeUnknown, "%s", config.Type)
	}
}

// WebhookNotifier forwards each saved lead to the sales team's inbox
// bridge. Delivery failures are reported to the caller, which logs and
// moves on; the lead is already persisted at that point.
type WebhookNotifier struct {
	logger types.Logger
	caller types.HTTPCaller
	config *types.NotifyConfig
}

type webhookPayload struct {
	From string     `json:"from"`
	To   []string   `json:"to"`
	Lead types.Lead `json:"lead"`
}

func NewWebhookNotifier(logger types.Logger, caller types.HTTPCaller, config *types.NotifyConfig) *WebhookNotifier {
	return &WebhookNotifier{
		logger: logger,
		caller: caller,
		config: config,
	}
}

func (n *WebhookNotifier) NotifyLead(ctx context.Context, lead types.Lead) error {
	payload := webhookPayload{
		From: n.config.From,
		To:   n.config.To,
		Lead: lead,
	}

	opts := &types.CallOptions{
		Timeout: n.config.Timeout,
	}
	if n.config.APIKey != "" {
		opts.Headers = map[string]string{"Authorization": "Bearer " + n.config.APIKey}
	}

	_, statusCode, err := n.caller.Call(fasthttp.MethodPost, "", payload, opts)
	if err != nil {
		return types.Errorf(types.ErrNotifyFailed, "%v", err)
	}
	if statusCode >= 300 {
		return types.Errorf(types.ErrNotifyFailed, "HTTP %d", statusCode)
	}

	n.logger.Debug("Lead notification delivered",
		zap.String("lead_id", lead.ID),
		zap.String("kind", lead.Kind))

	return nil
}

type NoopNotifier struct {
	logger types.Logger
}

func NewNoopNotifier(logger types.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

func (n *NoopNotifier) NotifyLead(ctx context.Context, lead types.Lead) error {
	n.logger.Debug("Lead notification skipped",
		zap.String("lead_id", lead.ID),
		zap.String("kind", lead.Kind))
	return nil
}
