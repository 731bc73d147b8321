package config

import (
	"context"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/agrosud-co/site-service/types"
)

type Loader struct {
	validator *validator.Validate
}

func NewLoader() *Loader {
	return &Loader{
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (l *Loader) LoadFromFile(ctx context.Context, configPath string) (*types.ServiceConfig, error) {
	if configPath == "" {
		return nil, types.ErrConfigNotFound
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, types.WrapError(err, "file not found: "+configPath)
	}

	data, err := l.readFileWithTimeout(ctx, configPath)
	if err != nil {
		return nil, types.WrapError(err, "failed to read config file")
	}

	// Secrets (CMS token, redis URL, captcha secret) come in as ${VAR}
	// placeholders so the YAML file itself stays committable.
	expanded := os.ExpandEnv(string(data))

	config := l.Defaults()

	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, types.Errorf(types.ErrConfigParseFailed, "%v", err)
	}

	if err := l.validator.Struct(config); err != nil {
		return nil, types.Errorf(types.ErrConfigValidateFailed, "%v", err)
	}

	return config, nil
}

func (l *Loader) readFileWithTimeout(ctx context.Context, filepath string) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}

	resultChan := make(chan result, 1)

	go func() {
		data, err := os.ReadFile(filepath)
		resultChan <- result{data: data, err: err}
	}()

	select {
	case res := <-resultChan:
		return res.data, res.err
	case <-ctx.Done():
		return nil, types.WrapError(ctx.Err(), "file read timeout")
	}
}

func (l *Loader) Defaults() *types.ServiceConfig {
	return &types.ServiceConfig{
		Server: &types.ServerConfig{
			HTTP: &types.HTTPConfig{
				Host:            "localhost",
				Port:            8080,
				ReadTimeout:     30,
				WriteTimeout:    30,
				IdleTimeout:     120,
				ShutdownTimeout: 10,
			},
			TLS: &types.TLSConfig{
				Enabled: false,
			},
		},
		Logger: &types.LoggerConfig{
			Level: "info",
		},
		Cache: &types.CacheConfig{
			TTL: time.Hour,
		},
		Limiter: &types.LimiterConfig{
			Type: "memory",
			Classes: map[string]types.RouteClassConfig{
				"contact":    {Limit: 5, WindowSeconds: 3600},
				"rfq":        {Limit: 10, WindowSeconds: 3600},
				"newsletter": {Limit: 3, WindowSeconds: 3600},
			},
		},
		CMS: &types.CMSConfig{
			BaseURL: "http://localhost:1337",
			Timeout: 10 * time.Second,
			Retries: 2,
		},
		Leads: &types.LeadsConfig{
			Store: "memory",
		},
		Captcha: &types.CaptchaConfig{
			Enabled: false,
			Timeout: 5 * time.Second,
		},
		Notify: &types.NotifyConfig{
			Type:    "noop",
			Timeout: 10 * time.Second,
		},
		Revalidate: &types.RevalidateConfig{},
		Metrics: &types.MetricsConfig{
			Enabled: false,
			Type:    "memory",
			Path:    "/metrics",
		},
		Health: &types.HealthConfig{
			Enabled: true,
		},
		Cron: &types.CronConfig{
			Enabled:     false,
			Timezone:    "UTC",
			RefreshSpec: "@every 30m",
		},
		Middlewares: &types.MiddlewaresConfig{
			Recovery: &types.MiddlewareItemConfig{
				Enabled: true,
				Weight:  10,
				Params: map[string]interface{}{
					"stack_trace": true,
				},
			},
			Logging: &types.MiddlewareItemConfig{
				Enabled: true,
				Weight:  20,
				Params: map[string]interface{}{
					"log_level": "info",
				},
			},
			Metadata: &types.MiddlewareItemConfig{
				Enabled: true,
				Weight:  30,
				Params: map[string]interface{}{
					"generate_request_id": true,
				},
			},
			RateLimit: &types.MiddlewareItemConfig{
				Enabled: true,
				Weight:  40,
			},
			BodyLimit: &types.MiddlewareItemConfig{
				Enabled: true,
				Weight:  50,
				Params: map[string]interface{}{
					"max_body_size": 1048576,
				},
			},
			CORS: &types.MiddlewareItemConfig{
				Enabled: true,
				Weight:  60,
				Params: map[string]interface{}{
					"allowed_origins": []string{"*"},
					"allowed_methods": []string{"GET", "POST", "OPTIONS"},
					"allowed_headers": []string{"Content-Type", "X-Request-ID"},
					"max_age":         86400,
				},
			},
			Compression: &types.MiddlewareItemConfig{
				Enabled: false,
				Weight:  70,
				Params: map[string]interface{}{
					"algorithm": "br",
					"threshold": 1024,
				},
			},
		},
	}
}
