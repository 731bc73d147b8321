package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/logger"
	"github.com/agrosud-co/site-service/types"
)

type fakeLeadStore struct {
	leads   []types.Lead
	saveErr error
}

func (f *fakeLeadStore) Start() error    { return nil }
func (f *fakeLeadStore) Stop() error     { return nil }
func (f *fakeLeadStore) IsRunning() bool { return true }

func (f *fakeLeadStore) SaveLead(ctx context.Context, lead types.Lead) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	lead.ID = "lead-1"
	f.leads = append(f.leads, lead)
	return lead.ID, nil
}

func (f *fakeLeadStore) CountLeads(ctx context.Context, kind string) (int64, error) {
	return int64(len(f.leads)), nil
}

type fakeNotifier struct {
	notified []types.Lead
	err      error
}

func (f *fakeNotifier) NotifyLead(ctx context.Context, lead types.Lead) error {
	f.notified = append(f.notified, lead)
	return f.err
}

type fakeCaptcha struct {
	err error
}

func (f *fakeCaptcha) Verify(ctx context.Context, token, remoteIP string) error {
	return f.err
}

func newLeadHandlers(store *fakeLeadStore, notifier *fakeNotifier, captcha *fakeCaptcha) *LeadHandlers {
	return NewLeadHandlers(logger.NewZapWrapper(zap.NewNop()), nil, store, notifier, captcha)
}

func postJSON(body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.Header.SetContentType("application/json")
	ctx.Request.SetBodyString(body)
	return ctx
}

func TestContact_Accepted(t *testing.T) {
	store := &fakeLeadStore{}
	notifier := &fakeNotifier{}
	h := newLeadHandlers(store, notifier, &fakeCaptcha{})

	ctx := postJSON(`{"name":"Awa Diallo","email":"awa@example.ci","message":"Bonjour, je souhaite un devis."}`)
	ctx.Request.Header.Set("x-real-ip", "203.0.113.5")
	h.Contact(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("status = %d, body = %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	if !strings.Contains(string(ctx.Response.Body()), `"status":"received"`) {
		t.Fatalf("body = %s", ctx.Response.Body())
	}
	if len(store.leads) != 1 {
		t.Fatalf("stored leads = %d, want 1", len(store.leads))
	}

	saved := store.leads[0]
	if saved.Kind != types.LeadKindContact {
		t.Fatalf("kind = %q", saved.Kind)
	}
	if saved.ClientIP != "203.0.113.5" {
		t.Fatalf("client ip = %q", saved.ClientIP)
	}
	if saved.Locale != "fr" {
		t.Fatalf("locale = %q, want fr default", saved.Locale)
	}
	if len(notifier.notified) != 1 {
		t.Fatalf("notified = %d, want 1", len(notifier.notified))
	}
}

func TestContact_MalformedBody(t *testing.T) {
	store := &fakeLeadStore{}
	h := newLeadHandlers(store, &fakeNotifier{}, &fakeCaptcha{})

	for _, body := range []string{"", "{not json"} {
		ctx := postJSON(body)
		h.Contact(ctx)
		if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, ctx.Response.StatusCode())
		}
	}
	if len(store.leads) != 0 {
		t.Fatalf("malformed bodies must not persist leads")
	}
}

func TestContact_MissingRequiredField(t *testing.T) {
	h := newLeadHandlers(&fakeLeadStore{}, &fakeNotifier{}, &fakeCaptcha{})

	ctx := postJSON(`{"name":"Awa Diallo","message":"pas d'email"}`)
	h.Contact(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", ctx.Response.StatusCode())
	}
	if !strings.Contains(string(ctx.Response.Body()), "Email") {
		t.Fatalf("body should name the offending field, got %s", ctx.Response.Body())
	}
}

func TestContact_CaptchaRejected(t *testing.T) {
	store := &fakeLeadStore{}
	h := newLeadHandlers(store, &fakeNotifier{}, &fakeCaptcha{err: types.ErrCaptchaRejected})

	ctx := postJSON(`{"name":"Bot","email":"bot@example.com","message":"spam"}`)
	h.Contact(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusForbidden {
		t.Fatalf("status = %d, want 403", ctx.Response.StatusCode())
	}
	if len(store.leads) != 0 {
		t.Fatalf("rejected submission must not be stored")
	}
}

func TestContact_CaptchaProviderDown(t *testing.T) {
	store := &fakeLeadStore{}
	h := newLeadHandlers(store, &fakeNotifier{}, &fakeCaptcha{err: types.ErrCaptchaUnavailable})

	ctx := postJSON(`{"name":"Awa Diallo","email":"awa@example.ci","message":"urgent"}`)
	h.Contact(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("provider outage must not block submissions, status = %d", ctx.Response.StatusCode())
	}
	if len(store.leads) != 1 {
		t.Fatalf("stored leads = %d, want 1", len(store.leads))
	}
}

func TestContact_StoreFailure(t *testing.T) {
	store := &fakeLeadStore{saveErr: types.ErrLeadStoreFailed}
	notifier := &fakeNotifier{}
	h := newLeadHandlers(store, notifier, &fakeCaptcha{})

	ctx := postJSON(`{"name":"Awa Diallo","email":"awa@example.ci","message":"test"}`)
	h.Contact(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", ctx.Response.StatusCode())
	}
	if len(notifier.notified) != 0 {
		t.Fatalf("unsaved lead must not be notified")
	}
}

func TestContact_NotifyFailureStillAccepted(t *testing.T) {
	h := newLeadHandlers(&fakeLeadStore{}, &fakeNotifier{err: types.ErrNotifyFailed}, &fakeCaptcha{})

	ctx := postJSON(`{"name":"Awa Diallo","email":"awa@example.ci","message":"test"}`)
	h.Contact(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("notify failure must not surface, status = %d", ctx.Response.StatusCode())
	}
}

func TestRFQ_CarriesProductFields(t *testing.T) {
	store := &fakeLeadStore{}
	h := newLeadHandlers(store, &fakeNotifier{}, &fakeCaptcha{})

	ctx := postJSON(`{"name":"Kofi Mensah","email":"kofi@example.gh","company":"Mensah Imports","product":"cacao-forastero","quantity":"20t","locale":"en"}`)
	h.RFQ(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("status = %d, body = %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	saved := store.leads[0]
	if saved.Kind != types.LeadKindRFQ || saved.Product != "cacao-forastero" || saved.Quantity != "20t" {
		t.Fatalf("saved = %+v", saved)
	}
	if saved.Locale != "en" {
		t.Fatalf("locale = %q, want en", saved.Locale)
	}
}

func TestRFQ_CompanyRequired(t *testing.T) {
	h := newLeadHandlers(&fakeLeadStore{}, &fakeNotifier{}, &fakeCaptcha{})

	ctx := postJSON(`{"name":"Kofi Mensah","email":"kofi@example.gh","product":"cacao"}`)
	h.RFQ(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", ctx.Response.StatusCode())
	}
}

func TestNewsletter_EmailOnly(t *testing.T) {
	store := &fakeLeadStore{}
	h := newLeadHandlers(store, &fakeNotifier{}, &fakeCaptcha{})

	ctx := postJSON(`{"email":"reader@example.fr"}`)
	h.Newsletter(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("status = %d, body = %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	if store.leads[0].Kind != types.LeadKindNewsletter {
		t.Fatalf("kind = %q", store.leads[0].Kind)
	}
}
