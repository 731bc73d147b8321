package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrosud-co/site-service/types"
)

// Manager runs registered checkers in parallel per report; a slow
// checker delays the report, not the others.
type Manager struct {
	logger    types.Logger
	info      types.ServiceInfo
	mu        sync.RWMutex
	checkers  map[string]types.HealthChecker
	running   bool
	startedAt time.Time
}

func NewManager(logger types.Logger, info types.ServiceInfo) *Manager {
	return &Manager{
		logger:   logger,
		info:     info,
		checkers: make(map[string]types.HealthChecker),
	}
}

func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return types.ErrServerAlreadyRunning
	}
	m.running = true
	m.startedAt = time.Now()

	m.logger.Info("Health manager started",
		zap.String("service", m.info.Name),
		zap.Int("checkers", len(m.checkers)))
	return nil
}

func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return types.ErrServerNotRunning
	}
	m.running = false

	m.logger.Info("Health manager stopped gracefully")
	return nil
}

func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Manager) RegisterChecker(name string, checker types.HealthChecker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers[name] = checker
}

func (m *Manager) Check(ctx context.Context) types.HealthReport {
	m.mu.RLock()
	checkers := make(map[string]types.HealthChecker, len(m.checkers))
	for name, checker := range m.checkers {
		checkers[name] = checker
	}
	startedAt := m.startedAt
	m.mu.RUnlock()

	checks := make(map[string]types.HealthCheck, len(checkers))
	var checksMu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for name, checker := range checkers {
		name, checker := name, checker
		g.Go(func() error {
			start := time.Now()
			check := checker(gCtx)
			check.Name = name
			check.LastCheck = start
			check.Duration = time.Since(start)

			checksMu.Lock()
			checks[name] = check
			checksMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	summary := types.HealthSummary{Total: len(checks)}
	status := types.StatusHealthy
	for _, check := range checks {
		switch check.Status {
		case types.StatusHealthy:
			summary.Healthy++
		case types.StatusUnhealthy:
			summary.Unhealthy++
			status = types.StatusUnhealthy
		default:
			summary.Unknown++
			if status == types.StatusHealthy {
				status = types.StatusUnknown
			}
		}
	}

	var uptime time.Duration
	if !startedAt.IsZero() {
		uptime = time.Since(startedAt)
	}

	return types.HealthReport{
		Status:    status,
		Timestamp: time.Now(),
		Uptime:    uptime,
		Service:   m.info,
		Checks:    checks,
		Summary:   summary,
	}
}
