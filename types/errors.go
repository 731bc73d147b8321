package types

import (
	"errors"
	"fmt"
)

var (
	ErrConfigNotFound       = errors.New("config not found")
	ErrConfigParseFailed    = errors.New("config parse failed")
	ErrConfigValidateFailed = errors.New("config validate failed")
)

var (
	ErrServerNotRunning     = errors.New("server not running")
	ErrServerAlreadyRunning = errors.New("server already running")
)

var (
	ErrMiddlewareWeightTaken = errors.New("middleware weight taken")
)

var (
	ErrCacheKeyEmpty    = errors.New("cache key empty")
	ErrCacheLoaderIsNil = errors.New("cache loader is nil")
)

var (
	ErrUpstreamUnavailable = errors.New("content upstream unavailable")
	ErrUpstreamBadPayload  = errors.New("content upstream returned malformed payload")
)

var (
	ErrLimiterStoreUnavailable = errors.New("limiter store unavailable")
	ErrRouteClassUnknown       = errors.New("route class unknown")
)

var (
	ErrLeadStoreFailed      = errors.New("lead store operation failed")
	ErrLeadStoreTypeUnknown = errors.New("lead store type unknown")
)

var (
	ErrCaptchaRejected    = errors.New("captcha verification rejected")
	ErrCaptchaUnavailable = errors.New("captcha provider unavailable")
)

var (
	ErrNotifierTypeUnknown = errors.New("notifier type unknown")
	ErrNotifyFailed        = errors.New("notification delivery failed")
)

var (
	ErrCronJobExists         = errors.New("cron job exists")
	ErrCronJobNameIsEmpty    = errors.New("cron job name is empty")
	ErrCronExpressionInvalid = errors.New("cron expression invalid")
)

var (
	ErrMetricsTypeUnknown = errors.New("metrics type unknown")
	ErrLimiterTypeUnknown = errors.New("limiter type unknown")
)

var (
	ErrClientRequestFailed   = errors.New("client request failed")
	ErrClientResponseInvalid = errors.New("client response invalid")
	ErrCircuitBreakerOpen    = errors.New("circuit breaker open")
)

var (
	ErrLogFileIsEmpty     = errors.New("log file is empty")
	ErrLogFileWrongFormat = errors.New("log file wrong format")
)

func Errorf(baseErr error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", baseErr, fmt.Sprintf(format, args...))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func NewErrorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func IsError(err, target error) bool {
	return errors.Is(err, target)
}
