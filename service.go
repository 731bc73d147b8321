package siteservice

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/cache"
	"github.com/agrosud-co/site-service/captcha"
	"github.com/agrosud-co/site-service/client"
	"github.com/agrosud-co/site-service/config"
	"github.com/agrosud-co/site-service/content"
	"github.com/agrosud-co/site-service/cron"
	"github.com/agrosud-co/site-service/handlers"
	"github.com/agrosud-co/site-service/health"
	"github.com/agrosud-co/site-service/limiter"
	"github.com/agrosud-co/site-service/logger"
	"github.com/agrosud-co/site-service/metrics"
	"github.com/agrosud-co/site-service/middleware"
	"github.com/agrosud-co/site-service/notify"
	"github.com/agrosud-co/site-service/server"
	"github.com/agrosud-co/site-service/storage"
	"github.com/agrosud-co/site-service/tls"
	"github.com/agrosud-co/site-service/types"
)

const refreshJobTimeout = 2 * time.Minute

// Service wires every manager explicitly. Construction order is the
// dependency order; Start and Stop walk it forwards and backwards.
type Service struct {
	ctx    context.Context
	cancel context.CancelFunc

	configManager *config.ConfigurationManager
	logger        types.Logger
	metrics       types.MetricsManager
	health        types.HealthManager
	cache         *cache.ContentCache
	limiter       types.RateLimiter
	classes       *limiter.Classes
	cmsClient     *client.HTTPClient
	notifyClient  *client.HTTPClient
	captchaClient *client.HTTPClient
	gateway       *content.Gateway
	leadStore     types.LeadStore
	notifier      types.Notifier
	captcha       types.CaptchaVerifier
	middlewares   *middleware.Manager
	cron          *cron.Manager
	server        *server.HTTPServer
}

func NewService(ctx context.Context, configPath string) (*Service, error) {
	serviceCtx, cancel := context.WithCancel(ctx)

	svc := &Service{
		ctx:    serviceCtx,
		cancel: cancel,
	}

	if err := svc.build(configPath); err != nil {
		svc.closeClients()
		cancel()
		return nil, err
	}

	return svc, nil
}

func (s *Service) build(configPath string) error {
	configManager, err := config.NewConfigurationManager(s.ctx, configPath)
	if err != nil {
		return types.WrapError(err, "configuration")
	}
	s.configManager = configManager
	cfg := configManager.GetConfig()

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return types.WrapError(err, "logger")
	}
	s.logger = log

	metricsManager, err := metrics.New(log, cfg.Metrics)
	if err != nil {
		return types.WrapError(err, "metrics")
	}
	s.metrics = metricsManager

	info := types.ServiceInfo{
		Name:    cfg.Name,
		Version: cfg.Version,
		Host:    cfg.Server.HTTP.Host,
		Port:    cfg.Server.HTTP.Port,
	}
	s.health = health.NewManager(log, info)

	s.cache = cache.New(log, metricsManager, cfg.Cache.TTL)

	rateLimiter, err := limiter.New(s.ctx, cfg.Limiter)
	if err != nil {
		return types.WrapError(err, "rate limiter")
	}
	s.limiter = rateLimiter
	s.classes = limiter.NewClasses(cfg.Limiter.Classes)

	s.cmsClient = client.NewHTTPClient(s.ctx, log, "cms", &client.Config{
		BaseURL: cfg.CMS.BaseURL,
		Timeout: cfg.CMS.Timeout,
		Retries: cfg.CMS.Retries,
		CircuitBreaker: &client.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
			HalfOpenRequests: 2,
		},
	})
	source := content.NewCMSSource(s.cmsClient, log, cfg.CMS.Token)
	s.gateway = content.NewGateway(source, s.cache, log)

	leadStore, err := storage.New(log, cfg.Leads)
	if err != nil {
		return types.WrapError(err, "lead store")
	}
	s.leadStore = leadStore

	var notifyCaller types.HTTPCaller
	if cfg.Notify.Type == "http" {
		s.notifyClient = client.NewHTTPClient(s.ctx, log, "notify", &client.Config{
			BaseURL: cfg.Notify.WebhookURL,
			Timeout: cfg.Notify.Timeout,
			Retries: 1,
		})
		notifyCaller = s.notifyClient
	}
	notifier, err := notify.New(log, notifyCaller, cfg.Notify)
	if err != nil {
		return types.WrapError(err, "notifier")
	}
	s.notifier = notifier

	var captchaCaller types.HTTPCaller
	if cfg.Captcha.Enabled {
		s.captchaClient = client.NewHTTPClient(s.ctx, log, "captcha", &client.Config{
			BaseURL: cfg.Captcha.VerifyURL,
			Timeout: cfg.Captcha.Timeout,
		})
		captchaCaller = s.captchaClient
	}
	s.captcha = captcha.New(log, captchaCaller, cfg.Captcha)

	s.middlewares = middleware.NewManager(log, metricsManager, rateLimiter, s.classes, cfg.Middlewares)
	if err := s.middlewares.RegisterMiddlewares(); err != nil {
		return types.WrapError(err, "middlewares")
	}

	router := server.NewRouter()
	handlers.NewContentHandlers(s.gateway, log).Register(router)
	handlers.NewLeadHandlers(log, metricsManager, leadStore, notifier, s.captcha).Register(router)
	handlers.NewRevalidateHandler(log, s.cache, cfg.Revalidate).Register(router)
	handlers.NewOpsHandlers(log, s.health, metricsManager, info).Register(router)

	if cfg.Cron.Enabled {
		s.cron = cron.NewManager(log, cfg.Cron)
		if err := s.cron.Add("content-refresh", cfg.Cron.RefreshSpec, s.refreshContent); err != nil {
			return types.WrapError(err, "cron")
		}
	}

	var certManager *tls.CertManager
	if cfg.Server.TLS != nil && cfg.Server.TLS.Enabled {
		certManager, err = tls.NewCertManager(log, cfg.Server.TLS)
		if err != nil {
			return types.WrapError(err, "tls")
		}
	}

	s.server = server.NewHTTPServer(log, cfg.Server, router, s.middlewares, certManager)

	s.registerHealthCheckers()

	return nil
}

func (s *Service) Start() error {
	if err := s.leadStore.Start(); err != nil {
		return types.WrapError(err, "lead store start")
	}
	if err := s.metrics.Start(); err != nil {
		return types.WrapError(err, "metrics start")
	}
	if err := s.health.Start(); err != nil {
		return types.WrapError(err, "health start")
	}
	if s.cron != nil {
		if err := s.cron.Start(); err != nil {
			return types.WrapError(err, "cron start")
		}
	}
	if err := s.server.Start(); err != nil {
		return types.WrapError(err, "server start")
	}

	cfg := s.configManager.GetConfig()
	s.logger.Info("Service started",
		zap.String("name", cfg.Name),
		zap.String("version", cfg.Version),
		zap.String("host", cfg.Server.HTTP.Host),
		zap.Int("port", cfg.Server.HTTP.Port))

	return nil
}

// Stop tears down in reverse start order. Every component gets its
// chance to shut down even when an earlier one fails; the first error
// wins.
func (s *Service) Stop() error {
	var firstErr error
	record := func(component string, err error) {
		if err == nil {
			return
		}
		s.logger.Error("Shutdown step failed",
			zap.String("component", component),
			zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	record("server", s.server.Stop())
	if s.cron != nil {
		record("cron", s.cron.Stop())
	}
	record("health", s.health.Stop())
	record("metrics", s.metrics.Stop())
	record("lead_store", s.leadStore.Stop())

	s.closeClients()
	if closer, ok := s.limiter.(interface{ Close() error }); ok {
		record("limiter", closer.Close())
	}
	s.configManager.Close()
	s.cancel()

	s.logger.Info("Service stopped")
	return firstErr
}

func (s *Service) refreshContent() {
	refreshCtx, cancel := context.WithTimeout(s.ctx, refreshJobTimeout)
	defer cancel()

	if err := s.gateway.Refresh(refreshCtx); err != nil {
		s.logger.Warn("Scheduled content refresh incomplete", zap.Error(err))
	}
}

func (s *Service) registerHealthCheckers() {
	s.health.RegisterChecker("lead_store", func(ctx context.Context) types.HealthCheck {
		if !s.leadStore.IsRunning() {
			return types.HealthCheck{Status: types.StatusUnhealthy, Message: "lead store not running"}
		}
		if _, err := s.leadStore.CountLeads(ctx, ""); err != nil {
			return types.HealthCheck{Status: types.StatusUnhealthy, Message: err.Error()}
		}
		return types.HealthCheck{Status: types.StatusHealthy}
	})

	s.health.RegisterChecker("cms", func(ctx context.Context) types.HealthCheck {
		// The breaker state is a cheap proxy for upstream health; probing
		// the CMS from the health endpoint would let monitoring traffic
		// trip the breaker itself.
		if state := s.cmsClient.BreakerState(); state == "open" {
			return types.HealthCheck{Status: types.StatusUnhealthy, Message: "circuit breaker open"}
		}
		return types.HealthCheck{Status: types.StatusHealthy}
	})

	if pinger, ok := s.limiter.(interface{ Ping(context.Context) error }); ok {
		s.health.RegisterChecker("rate_limiter", func(ctx context.Context) types.HealthCheck {
			if err := pinger.Ping(ctx); err != nil {
				return types.HealthCheck{Status: types.StatusUnhealthy, Message: err.Error()}
			}
			return types.HealthCheck{Status: types.StatusHealthy}
		})
	}

	s.health.RegisterChecker("http_server", func(ctx context.Context) types.HealthCheck {
		if !s.server.IsRunning() {
			return types.HealthCheck{Status: types.StatusUnhealthy, Message: "server not running"}
		}
		return types.HealthCheck{Status: types.StatusHealthy}
	})
}

func (s *Service) closeClients() {
	for _, c := range []*client.HTTPClient{s.cmsClient, s.notifyClient, s.captchaClient} {
		if c != nil {
			c.Close()
		}
	}
}
