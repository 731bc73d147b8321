package middleware

import (
	"testing"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/logger"
	"github.com/agrosud-co/site-service/types"
)

type recordingMiddleware struct {
	name   string
	weight int
	trace  *[]string
}

func (m *recordingMiddleware) Handle(ctx *fasthttp.RequestCtx, next types.FastHTTPHandler, config *types.RouteConfig) {
	*m.trace = append(*m.trace, m.name)
	next(ctx)
}

func (m *recordingMiddleware) Name() string {
	return m.name
}

func (m *recordingMiddleware) Weight() int {
	return m.weight
}

func newBareManager() *Manager {
	log := logger.NewZapWrapper(zap.NewNop())
	return NewManager(log, nil, nil, testClasses(), &types.MiddlewaresConfig{})
}

func TestManager_ExecutesByWeight(t *testing.T) {
	m := newBareManager()
	var trace []string

	for _, mw := range []*recordingMiddleware{
		{name: "third", weight: 30, trace: &trace},
		{name: "first", weight: 10, trace: &trace},
		{name: "second", weight: 20, trace: &trace},
	} {
		if err := m.Register(mw); err != nil {
			t.Fatal(err)
		}
	}

	ctx := &fasthttp.RequestCtx{}
	m.Execute(ctx, func(ctx *fasthttp.RequestCtx) {
		trace = append(trace, "handler")
	}, nil)

	want := []string{"first", "second", "third", "handler"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v", trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestManager_PerRouteDisable(t *testing.T) {
	m := newBareManager()
	var trace []string

	if err := m.Register(&recordingMiddleware{name: "logging", weight: 10, trace: &trace}); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(&recordingMiddleware{name: "compression", weight: 20, trace: &trace}); err != nil {
		t.Fatal(err)
	}

	ctx := &fasthttp.RequestCtx{}
	m.Execute(ctx, func(ctx *fasthttp.RequestCtx) {
		trace = append(trace, "handler")
	}, &types.RouteConfig{DisabledMiddlewares: []string{"compression"}})

	if len(trace) != 2 || trace[0] != "logging" || trace[1] != "handler" {
		t.Fatalf("trace = %v", trace)
	}
}

func TestManager_DuplicateWeightRejected(t *testing.T) {
	m := newBareManager()
	var trace []string

	if err := m.Register(&recordingMiddleware{name: "a", weight: 10, trace: &trace}); err != nil {
		t.Fatal(err)
	}
	err := m.Register(&recordingMiddleware{name: "b", weight: 10, trace: &trace})
	if !types.IsError(err, types.ErrMiddlewareWeightTaken) {
		t.Fatalf("expected weight conflict, got %v", err)
	}
}
