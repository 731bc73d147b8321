package metrics

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/logger"
)

func TestMemoryMetrics_CounterAccumulates(t *testing.T) {
	m := NewMemoryMetrics()

	labels := map[string]string{"outcome": "hit"}
	m.Counter("content_cache_requests_total", labels).Inc()
	m.Counter("content_cache_requests_total", labels).Add(2)

	if got := m.CounterValue("content_cache_requests_total", labels); got != 3 {
		t.Fatalf("counter = %v, want 3", got)
	}

	other := map[string]string{"outcome": "stale"}
	if got := m.CounterValue("content_cache_requests_total", other); got != 0 {
		t.Fatalf("different label set must be independent, got %v", got)
	}
}

func TestMemoryMetrics_GaugeAndHistogram(t *testing.T) {
	m := NewMemoryMetrics()

	gauge := m.Gauge("cache_entries", nil)
	gauge.Set(5)
	gauge.Inc()
	gauge.Dec()

	histogram := m.Histogram("request_duration_seconds", nil, nil)
	histogram.Observe(0.25)
	histogram.ObserveDuration(time.Now())

	payload, err := m.GetMetrics()
	if err != nil {
		t.Fatal(err)
	}
	if len(payload) == 0 {
		t.Fatal("expected serialized metrics")
	}
}

func TestPrometheusMetrics_CounterValue(t *testing.T) {
	p := NewPrometheusMetrics(logger.NewZapWrapper(zap.NewNop()))

	labels := map[string]string{"kind": "contact"}
	p.Counter("leads_saved_total", labels).Inc()
	p.Counter("leads_saved_total", labels).Inc()

	if got := p.CounterValue("leads_saved_total", labels); got != 2 {
		t.Fatalf("counter = %v, want 2", got)
	}
}

func TestPrometheusMetrics_Lifecycle(t *testing.T) {
	p := NewPrometheusMetrics(logger.NewZapWrapper(zap.NewNop()))

	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(); err == nil {
		t.Fatal("double start must fail")
	}
	if !p.IsRunning() {
		t.Fatal("expected running")
	}
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
}
