package types

import (
	"context"
	"time"
)

const (
	LeadKindContact    = "contact"
	LeadKindRFQ        = "rfq"
	LeadKindNewsletter = "newsletter"
)

type Lead struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Country   string    `json:"country"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	Product   string    `json:"product"`
	Quantity  string    `json:"quantity"`
	Locale    string    `json:"locale"`
	ClientIP  string    `json:"client_ip"`
	CreatedAt time.Time `json:"created_at"`
}

type LeadStore interface {
	LifecycleManager
	SaveLead(ctx context.Context, lead Lead) (string, error)
	CountLeads(ctx context.Context, kind string) (int64, error)
}

type Notifier interface {
	NotifyLead(ctx context.Context, lead Lead) error
}

type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}
