package client

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
)

type CircuitBreakerConfig struct {
	Enabled          bool          `yaml:"enabled" json:"enabled"`
	FailureThreshold int           `yaml:"failure_threshold" json:"failure_threshold"`
	RecoveryTimeout  time.Duration `yaml:"recovery_timeout" json:"recovery_timeout"`
	HalfOpenRequests int           `yaml:"half_open_requests" json:"half_open_requests"`
}

type breakerState int32

const (
	stateBreakerClosed breakerState = iota
	stateBreakerOpen
	stateBreakerHalfOpen
)

// CircuitBreaker shields the upstream from hammering while it is down.
// With the breaker open the cache's stale fallback carries the content
// surface, so opening early is cheap.
type CircuitBreaker struct {
	config      *CircuitBreakerConfig
	logger      types.Logger
	serviceName string

	mutex     sync.Mutex
	state     breakerState
	failures  int
	successes int
	lastFail  time.Time
	now       func() time.Time
}

func NewCircuitBreaker(config *CircuitBreakerConfig, logger types.Logger, serviceName string) *CircuitBreaker {
	if config == nil {
		config = &CircuitBreakerConfig{Enabled: false}
	}
	return &CircuitBreaker{
		config:      config,
		logger:      logger,
		serviceName: serviceName,
		state:       stateBreakerClosed,
		now:         time.Now,
	}
}

func (cb *CircuitBreaker) CanExecute() bool {
	if cb == nil || !cb.config.Enabled {
		return true
	}

	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case stateBreakerClosed, stateBreakerHalfOpen:
		return true
	case stateBreakerOpen:
		if cb.now().Sub(cb.lastFail) > cb.config.RecoveryTimeout {
			cb.state = stateBreakerHalfOpen
			cb.successes = 0
			cb.logger.Info("Circuit breaker transitioned to half-open",
				zap.String("service", cb.serviceName))
			return true
		}
		return false
	default:
		return true
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	if cb == nil || !cb.config.Enabled {
		return
	}

	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case stateBreakerClosed:
		cb.failures = 0
	case stateBreakerHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.HalfOpenRequests {
			cb.state = stateBreakerClosed
			cb.failures = 0
			cb.successes = 0
			cb.logger.Info("Circuit breaker closed",
				zap.String("service", cb.serviceName))
		}
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	if cb == nil || !cb.config.Enabled {
		return
	}

	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.lastFail = cb.now()

	switch cb.state {
	case stateBreakerClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.open()
		}
	case stateBreakerHalfOpen:
		cb.open()
	}
}

func (cb *CircuitBreaker) open() {
	cb.state = stateBreakerOpen
	cb.successes = 0
	cb.logger.Warn("Circuit breaker opened",
		zap.String("service", cb.serviceName),
		zap.Int("failures", cb.failures),
		zap.Int("threshold", cb.config.FailureThreshold))
}

func (cb *CircuitBreaker) StateString() string {
	if cb == nil || !cb.config.Enabled {
		return "disabled"
	}

	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case stateBreakerClosed:
		return "closed"
	case stateBreakerOpen:
		return "open"
	case stateBreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func IsCircuitBreakerFailure(statusCode int, err error) bool {
	if err != nil {
		return true
	}

	switch statusCode {
	case 408, 429, 502, 503, 504:
		return true
	default:
		return false
	}
}

func IsSuccessfulResponse(statusCode int, err error) bool {
	if err != nil {
		return false
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		return true
	case statusCode >= 400 && statusCode < 500:
		return statusCode != 429 && statusCode != 408
	default:
		return false
	}
}
