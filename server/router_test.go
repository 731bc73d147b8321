package server

import (
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/agrosud-co/site-service/types"
)

func noop(ctx *fasthttp.RequestCtx) {}

func TestRouter_ExactMatch(t *testing.T) {
	r := NewRouter()
	r.GET("/api/products", noop, nil)

	_, _, params, found := r.Lookup("GET", "/api/products")
	if !found {
		t.Fatal("expected match")
	}
	if params != nil {
		t.Fatalf("unexpected params %v", params)
	}

	if _, _, _, found := r.Lookup("POST", "/api/products"); found {
		t.Fatal("method must be part of the match")
	}
	if _, _, _, found := r.Lookup("GET", "/api/articles"); found {
		t.Fatal("different path must not match")
	}
}

func TestRouter_ParamExtraction(t *testing.T) {
	r := NewRouter()
	r.GET("/api/products/{slug}", noop, nil)

	_, _, params, found := r.Lookup("GET", "/api/products/cacao-forastero")
	if !found {
		t.Fatal("expected match")
	}
	if params["slug"] != "cacao-forastero" {
		t.Fatalf("params = %v", params)
	}

	if _, _, _, found := r.Lookup("GET", "/api/products"); found {
		t.Fatal("shorter path must not match the parameterized route")
	}
	if _, _, _, found := r.Lookup("GET", "/api/products/a/b"); found {
		t.Fatal("longer path must not match")
	}
}

func TestRouter_ConfigReturned(t *testing.T) {
	r := NewRouter()
	config := &types.RouteConfig{RateLimitClass: "contact"}
	r.POST("/api/contact", noop, config)

	_, got, _, found := r.Lookup("POST", "/api/contact")
	if !found {
		t.Fatal("expected match")
	}
	if got.RateLimitClass != "contact" {
		t.Fatalf("config = %+v", got)
	}
}

func TestRouter_TrailingSlash(t *testing.T) {
	r := NewRouter()
	r.GET("/health", noop, nil)

	if _, _, _, found := r.Lookup("GET", "/health/"); !found {
		t.Fatal("trailing slash should still match")
	}
}
