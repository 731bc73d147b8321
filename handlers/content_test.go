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

type fakeGateway struct {
	products []types.Product
	articles []types.Article
	team     []types.TeamMember
	err      error
}

func (f *fakeGateway) ListProducts(ctx context.Context, locale string) ([]types.Product, error) {
	return f.products, f.err
}

func (f *fakeGateway) GetProduct(ctx context.Context, slug, locale string) (*types.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if f.products[i].Slug == slug {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) ListProductSlugs(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	slugs := make([]string, 0, len(f.products))
	for _, product := range f.products {
		slugs = append(slugs, product.Slug)
	}
	return slugs, nil
}

func (f *fakeGateway) ListArticles(ctx context.Context, locale string) ([]types.Article, error) {
	return f.articles, f.err
}

func (f *fakeGateway) GetArticle(ctx context.Context, slug, locale string) (*types.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.articles {
		if f.articles[i].Slug == slug {
			return &f.articles[i], nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) ListArticleSlugs(ctx context.Context) ([]string, error) {
	return nil, f.err
}

func (f *fakeGateway) ListTeam(ctx context.Context, locale string) ([]types.TeamMember, error) {
	return f.team, f.err
}

func (f *fakeGateway) Refresh(ctx context.Context) error {
	return f.err
}

func newContentHandlers(gateway *fakeGateway) *ContentHandlers {
	return NewContentHandlers(gateway, logger.NewZapWrapper(zap.NewNop()))
}

func TestGetProduct_Found(t *testing.T) {
	gateway := &fakeGateway{products: []types.Product{{Slug: "cacao", Name: types.LocalizedText{FR: "Cacao"}}}}
	h := newContentHandlers(gateway)

	ctx := &fasthttp.RequestCtx{}
	ctx.SetUserValue("slug", "cacao")
	h.GetProduct(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	if !strings.Contains(string(ctx.Response.Body()), "cacao") {
		t.Fatalf("body = %s", ctx.Response.Body())
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	h := newContentHandlers(&fakeGateway{})

	ctx := &fasthttp.RequestCtx{}
	ctx.SetUserValue("slug", "inexistant")
	h.GetProduct(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", ctx.Response.StatusCode())
	}
}

func TestGetProduct_MissingSlug(t *testing.T) {
	h := newContentHandlers(&fakeGateway{})

	ctx := &fasthttp.RequestCtx{}
	h.GetProduct(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", ctx.Response.StatusCode())
	}
}

func TestListProducts_UpstreamDown(t *testing.T) {
	h := newContentHandlers(&fakeGateway{err: types.ErrUpstreamUnavailable})

	ctx := &fasthttp.RequestCtx{}
	h.ListProducts(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", ctx.Response.StatusCode())
	}
	if !strings.Contains(string(ctx.Response.Body()), "Content temporarily unavailable") {
		t.Fatalf("body = %s", ctx.Response.Body())
	}
}

func TestListProducts_EmptyIsOK(t *testing.T) {
	h := newContentHandlers(&fakeGateway{})

	ctx := &fasthttp.RequestCtx{}
	h.ListProducts(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
}

func TestRequestLocale(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	if got := requestLocale(ctx); got != "fr" {
		t.Fatalf("default locale = %q, want fr", got)
	}

	ctx.QueryArgs().Set("locale", "en")
	if got := requestLocale(ctx); got != "en" {
		t.Fatalf("locale = %q, want en", got)
	}

	ctx.QueryArgs().Set("locale", "de")
	if got := requestLocale(ctx); got != "fr" {
		t.Fatalf("unsupported locale must fall back to fr, got %q", got)
	}
}
