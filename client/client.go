package client

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

// HTTPClient is the outbound client for the CMS and webhook endpoints.
// 4xx responses other than 408/429 are returned as-is with no retry;
// the caller decides what a 404 means.
type HTTPClient struct {
	ctx            context.Context
	cancel         context.CancelFunc
	logger         types.Logger
	name           string
	client         *fasthttp.Client
	baseURL        string
	retries        int
	requestTimeout time.Duration
	circuitBreaker *CircuitBreaker
	closed         atomic.Bool
}

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	Retries        int
	CircuitBreaker *CircuitBreakerConfig
}

func NewHTTPClient(ctx context.Context, logger types.Logger, serviceName string, config *Config) *HTTPClient {
	clientCtx, cancel := context.WithCancel(ctx)

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPClient{
		ctx:    clientCtx,
		cancel: cancel,
		logger: logger,
		name:   serviceName,
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL:        config.BaseURL,
		retries:        config.Retries,
		requestTimeout: timeout,
		circuitBreaker: NewCircuitBreaker(config.CircuitBreaker, logger, serviceName),
	}
}

func (c *HTTPClient) Call(method, path string, data interface{}, opts *types.CallOptions) ([]byte, int, error) {
	if c.closed.Load() {
		return nil, fasthttp.StatusInternalServerError, types.NewErrorf("client closed for service: %s", c.name)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)

	if data != nil {
		switch body := data.(type) {
		case []byte:
			req.SetBody(body)
		default:
			jsonData, err := utils.Marshal(data)
			if err != nil {
				return nil, fasthttp.StatusInternalServerError, types.WrapError(err, "marshal request data")
			}
			req.SetBody(jsonData)
			req.Header.SetContentType("application/json")
		}
	}

	timeout := c.requestTimeout
	retries := c.retries

	if opts != nil {
		for key, value := range opts.Headers {
			req.Header.Set(key, value)
		}
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		if opts.Retry > 0 {
			retries = opts.Retry
		}
	}

	return c.executeWithRetries(req, resp, timeout, retries)
}

func (c *HTTPClient) executeWithRetries(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration, maxRetries int) ([]byte, int, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if !c.circuitBreaker.CanExecute() {
			return nil, fasthttp.StatusServiceUnavailable, types.ErrCircuitBreakerOpen
		}

		err := c.client.DoTimeout(req, resp, timeout)
		statusCode := resp.StatusCode()

		if IsSuccessfulResponse(statusCode, err) {
			c.circuitBreaker.RecordSuccess()

			responseBody := make([]byte, len(resp.Body()))
			copy(responseBody, resp.Body())

			return responseBody, statusCode, nil
		}

		if IsCircuitBreakerFailure(statusCode, err) {
			c.circuitBreaker.RecordFailure()
		}

		lastErr = err
		if err == nil {
			lastErr = types.Errorf(types.ErrClientResponseInvalid, "HTTP %d", statusCode)
		}

		if attempt < maxRetries {
			backoff := time.Duration(attempt+1) * time.Second

			select {
			case <-time.After(backoff):
				c.logger.Debug("Retrying request",
					zap.String("service", c.name),
					zap.Duration("backoff", backoff),
					zap.Error(lastErr))
			case <-c.ctx.Done():
				return nil, fasthttp.StatusInternalServerError,
					types.NewErrorf("client shutting down during retry for service: %s", c.name)
			}
		}
	}

	return nil, fasthttp.StatusInternalServerError,
		types.Errorf(types.ErrClientRequestFailed, "all %d attempts failed for service %s: %v", maxRetries+1, c.name, lastErr)
}

func (c *HTTPClient) BreakerState() string {
	return c.circuitBreaker.StateString()
}

func (c *HTTPClient) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.cancel()
		c.logger.Debug("HTTP client closed", zap.String("service", c.name))
	}
}
