package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

// MemoryMetrics is a lock-and-map implementation for tests and for
// deployments that never get scraped.
type MemoryMetrics struct {
	mu       sync.Mutex
	counters map[string]float64
	gauges   map[string]float64
	samples  map[string][]float64
	running  bool
}

func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{
		counters: make(map[string]float64),
		gauges:   make(map[string]float64),
		samples:  make(map[string][]float64),
	}
}

func (m *MemoryMetrics) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return types.ErrServerAlreadyRunning
	}
	m.running = true
	return nil
}

func (m *MemoryMetrics) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return types.ErrServerNotRunning
	}
	m.running = false
	return nil
}

func (m *MemoryMetrics) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *MemoryMetrics) Counter(name string, labels map[string]string) types.Counter {
	return &memoryCounter{metrics: m, key: metricKey(name, labels)}
}

func (m *MemoryMetrics) Gauge(name string, labels map[string]string) types.Gauge {
	return &memoryGauge{metrics: m, key: metricKey(name, labels)}
}

func (m *MemoryMetrics) Histogram(name string, buckets []float64, labels map[string]string) types.Histogram {
	return &memoryHistogram{metrics: m, key: metricKey(name, labels)}
}

func (m *MemoryMetrics) GetMetrics() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var values []types.MetricValue
	now := time.Now()

	for key, value := range m.counters {
		values = append(values, types.MetricValue{Name: key, Type: "COUNTER", Value: value, Timestamp: now})
	}
	for key, value := range m.gauges {
		values = append(values, types.MetricValue{Name: key, Type: "GAUGE", Value: value, Timestamp: now})
	}
	for key, observed := range m.samples {
		var sum float64
		for _, sample := range observed {
			sum += sample
		}
		values = append(values, types.MetricValue{Name: key, Type: "HISTOGRAM", Value: sum, Timestamp: now})
	}

	sort.Slice(values, func(i, j int) bool { return values[i].Name < values[j].Name })

	return utils.Marshal(values)
}

// CounterValue is the test hook for asserting on recorded counts.
func (m *MemoryMetrics) CounterValue(name string, labels map[string]string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[metricKey(name, labels)]
}

func metricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}

	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, key := range keys {
		b.WriteString("|")
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(labels[key])
	}
	return b.String()
}

type memoryCounter struct {
	metrics *MemoryMetrics
	key     string
}

func (c *memoryCounter) Inc() {
	c.Add(1)
}

func (c *memoryCounter) Add(value float64) {
	c.metrics.mu.Lock()
	defer c.metrics.mu.Unlock()
	c.metrics.counters[c.key] += value
}

type memoryGauge struct {
	metrics *MemoryMetrics
	key     string
}

func (g *memoryGauge) Set(value float64) {
	g.metrics.mu.Lock()
	defer g.metrics.mu.Unlock()
	g.metrics.gauges[g.key] = value
}

func (g *memoryGauge) Inc() {
	g.metrics.mu.Lock()
	defer g.metrics.mu.Unlock()
	g.metrics.gauges[g.key]++
}

func (g *memoryGauge) Dec() {
	g.metrics.mu.Lock()
	defer g.metrics.mu.Unlock()
	g.metrics.gauges[g.key]--
}

type memoryHistogram struct {
	metrics *MemoryMetrics
	key     string
}

func (h *memoryHistogram) Observe(value float64) {
	h.metrics.mu.Lock()
	defer h.metrics.mu.Unlock()
	h.metrics.samples[h.key] = append(h.metrics.samples[h.key], value)
}

func (h *memoryHistogram) ObserveDuration(start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
