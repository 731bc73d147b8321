package cron

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
)

// Manager schedules the content warm-refresh and any other background
// jobs. Jobs are registered before Start; panics inside a job are
// recovered by the scheduler so one bad run cannot kill the loop.
type Manager struct {
	logger   types.Logger
	cron     *cron.Cron
	mu       sync.Mutex
	jobs     map[string]cron.EntryID
	running  bool
	timezone *time.Location
}

func NewManager(logger types.Logger, config *types.CronConfig) *Manager {
	timezone := time.UTC
	if config.Timezone != "" {
		if loc, err := time.LoadLocation(config.Timezone); err == nil {
			timezone = loc
		} else {
			logger.Warn("Unknown cron timezone, falling back to UTC",
				zap.String("timezone", config.Timezone))
		}
	}

	scheduler := cron.New(
		cron.WithLocation(timezone),
		cron.WithChain(cron.Recover(&cronLogger{logger: logger})),
	)

	return &Manager{
		logger:   logger,
		cron:     scheduler,
		jobs:     make(map[string]cron.EntryID),
		timezone: timezone,
	}
}

func (m *Manager) Add(jobName, spec string, job func()) error {
	if jobName == "" {
		return types.ErrCronJobNameIsEmpty
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[jobName]; exists {
		return types.Errorf(types.ErrCronJobExists, "%s", jobName)
	}

	name := jobName
	entryID, err := m.cron.AddFunc(spec, func() {
		start := time.Now()
		job()
		m.logger.Debug("Cron job finished",
			zap.String("job", name),
			zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return types.Errorf(types.ErrCronExpressionInvalid, "%s: %v", spec, err)
	}

	m.jobs[jobName] = entryID
	m.logger.Info("Cron job registered",
		zap.String("job", jobName),
		zap.String("spec", spec))
	return nil
}

func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return types.ErrServerAlreadyRunning
	}
	m.running = true
	m.cron.Start()

	m.logger.Info("Cron manager started",
		zap.String("timezone", m.timezone.String()),
		zap.Int("jobs", len(m.jobs)))
	return nil
}

func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return types.ErrServerNotRunning
	}
	m.running = false

	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(10 * time.Second):
		m.logger.Warn("Cron stop timed out waiting for running jobs")
	}

	m.logger.Info("Cron manager stopped gracefully")
	return nil
}

func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

type cronLogger struct {
	logger types.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, zap.Any("details", keysAndValues))
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
