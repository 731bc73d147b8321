package middleware

import (
	"sort"
	"sync"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
)

const MaxMiddlewares = 64

// Manager keeps the chain sorted by weight and applies per-route
// disables at execution time. Registration happens once at startup;
// Execute runs on every request.
type Manager struct {
	logger  types.Logger
	metrics types.MetricsManager
	limiter types.RateLimiter
	classes RouteClassResolver
	config  *types.MiddlewaresConfig

	mu      sync.RWMutex
	entries []types.MiddlewareEntry
	weights map[int]string
}

// RouteClassResolver maps a route class name from RouteConfig to its
// limiter parameters.
type RouteClassResolver interface {
	Get(name string) (types.RouteClass, error)
}

func NewManager(logger types.Logger, metrics types.MetricsManager, limiter types.RateLimiter, classes RouteClassResolver, config *types.MiddlewaresConfig) *Manager {
	return &Manager{
		logger:  logger,
		metrics: metrics,
		limiter: limiter,
		classes: classes,
		config:  config,
		weights: make(map[int]string),
	}
}

func (m *Manager) RegisterMiddlewares() error {
	if itemEnabled(m.config.Recovery) {
		if err := m.Register(NewRecoveryMiddleware(m.logger, m.metrics, m.config.Recovery.Weight)); err != nil {
			return err
		}
	}

	if itemEnabled(m.config.Logging) {
		if err := m.Register(NewLoggingMiddleware(m.logger, m.metrics, m.config.Logging.Weight)); err != nil {
			return err
		}
	}

	if itemEnabled(m.config.Metadata) {
		if err := m.Register(NewMetadataMiddleware(m.logger, m.config.Metadata.Weight)); err != nil {
			return err
		}
	}

	if itemEnabled(m.config.RateLimit) {
		if err := m.Register(NewRateLimitMiddleware(m.logger, m.metrics, m.limiter, m.classes, m.config.RateLimit.Weight)); err != nil {
			return err
		}
	}

	if itemEnabled(m.config.BodyLimit) {
		if err := m.Register(NewBodyLimitMiddleware(m.logger, m.config.BodyLimit)); err != nil {
			return err
		}
	}

	if itemEnabled(m.config.CORS) {
		if err := m.Register(NewCORSMiddleware(m.logger, m.config.CORS)); err != nil {
			return err
		}
	}

	if itemEnabled(m.config.Compression) {
		if err := m.Register(NewCompressionMiddleware(m.logger, m.config.Compression.Weight)); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) Register(middleware types.Middleware) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) >= MaxMiddlewares {
		return types.NewErrorf("middleware limit reached: %d", MaxMiddlewares)
	}

	weight := middleware.Weight()
	if taken, exists := m.weights[weight]; exists {
		return types.Errorf(types.ErrMiddlewareWeightTaken, "weight %d already taken by %s", weight, taken)
	}

	m.weights[weight] = middleware.Name()
	m.entries = append(m.entries, types.MiddlewareEntry{
		Name:       middleware.Name(),
		Middleware: middleware,
		Weight:     weight,
	})

	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].Weight < m.entries[j].Weight
	})

	m.logger.Info("Middleware registered",
		zap.String("name", middleware.Name()),
		zap.Int("weight", weight))
	return nil
}

func (m *Manager) Execute(ctx *fasthttp.RequestCtx, handler types.FastHTTPHandler, config *types.RouteConfig) {
	m.mu.RLock()
	entries := m.entries
	m.mu.RUnlock()

	disabled := map[string]bool{}
	if config != nil {
		for _, name := range config.DisabledMiddlewares {
			disabled[name] = true
		}
	}

	chain := handler
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if disabled[entry.Name] {
			continue
		}
		next := chain
		middleware := entry.Middleware
		chain = func(ctx *fasthttp.RequestCtx) {
			middleware.Handle(ctx, next, config)
		}
	}

	chain(ctx)
}

func itemEnabled(item *types.MiddlewareItemConfig) bool {
	return item != nil && item.Enabled
}
