package types

import (
	"time"
)

type ServiceConfig struct {
	Name        string             `yaml:"name" json:"name" validate:"required"`
	Version     string             `yaml:"version" json:"version" validate:"required"`
	Server      *ServerConfig      `yaml:"server" json:"server"`
	Logger      *LoggerConfig      `yaml:"logger" json:"logger"`
	Cache       *CacheConfig       `yaml:"cache" json:"cache"`
	Limiter     *LimiterConfig     `yaml:"limiter" json:"limiter"`
	CMS         *CMSConfig         `yaml:"cms" json:"cms"`
	Leads       *LeadsConfig       `yaml:"leads" json:"leads"`
	Captcha     *CaptchaConfig     `yaml:"captcha" json:"captcha"`
	Notify      *NotifyConfig      `yaml:"notify" json:"notify"`
	Revalidate  *RevalidateConfig  `yaml:"revalidate" json:"revalidate"`
	Middlewares *MiddlewaresConfig `yaml:"middlewares" json:"middlewares"`
	Metrics     *MetricsConfig     `yaml:"metrics" json:"metrics"`
	Health      *HealthConfig      `yaml:"health" json:"health"`
	Cron        *CronConfig        `yaml:"cron" json:"cron"`
}

type ServerConfig struct {
	HTTP *HTTPConfig `yaml:"http" json:"http"`
	TLS  *TLSConfig  `yaml:"tls" json:"tls"`
}

type HTTPConfig struct {
	Host            string `yaml:"host" json:"host"`
	Port            int    `yaml:"port" json:"port" validate:"min=1,max=65535"`
	ReadTimeout     int    `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    int    `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     int    `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout int    `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

type TLSConfig struct {
	Enabled  bool     `yaml:"enabled" json:"enabled"`
	CertFile string   `yaml:"cert_file,omitempty" json:"cert_file,omitempty"`
	KeyFile  string   `yaml:"key_file,omitempty" json:"key_file,omitempty"`
	AutoCert bool     `yaml:"auto_cert" json:"auto_cert"`
	Domains  []string `yaml:"domains,omitempty" json:"domains,omitempty"`
	CacheDir string   `yaml:"cache_dir,omitempty" json:"cache_dir,omitempty"`
}

type LoggerConfig struct {
	Level  string      `yaml:"level" json:"level" validate:"required"`
	Config interface{} `yaml:"config" json:"config"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" json:"ttl" validate:"min=0"`
}

type LimiterConfig struct {
	Type    string                      `yaml:"type" json:"type" validate:"required,oneof=redis memory"`
	URL     string                      `yaml:"url" json:"url"`
	Classes map[string]RouteClassConfig `yaml:"classes" json:"classes"`
}

type RouteClassConfig struct {
	Limit         int `yaml:"limit" json:"limit" validate:"min=1"`
	WindowSeconds int `yaml:"window_seconds" json:"window_seconds" validate:"min=1"`
}

type CMSConfig struct {
	BaseURL string        `yaml:"base_url" json:"base_url" validate:"required,url"`
	Token   string        `yaml:"token" json:"token"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	Retries int           `yaml:"retries" json:"retries"`
}

type LeadsConfig struct {
	Store string `yaml:"store" json:"store" validate:"required,oneof=clover memory"`
	Path  string `yaml:"path" json:"path"`
}

type CaptchaConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	VerifyURL string        `yaml:"verify_url" json:"verify_url"`
	Secret    string        `yaml:"secret" json:"secret"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

type NotifyConfig struct {
	Type       string        `yaml:"type" json:"type" validate:"required,oneof=http noop"`
	WebhookURL string        `yaml:"webhook_url" json:"webhook_url"`
	APIKey     string        `yaml:"api_key" json:"api_key"`
	From       string        `yaml:"from" json:"from"`
	To         []string      `yaml:"to" json:"to"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
}

type RevalidateConfig struct {
	Token string `yaml:"token" json:"token"`
}

type MiddlewaresConfig struct {
	Recovery    *MiddlewareItemConfig `yaml:"recovery" json:"recovery"`
	Logging     *MiddlewareItemConfig `yaml:"logging" json:"logging"`
	Metadata    *MiddlewareItemConfig `yaml:"metadata" json:"metadata"`
	CORS        *MiddlewareItemConfig `yaml:"cors" json:"cors"`
	BodyLimit   *MiddlewareItemConfig `yaml:"body_limit" json:"body_limit"`
	Compression *MiddlewareItemConfig `yaml:"compression" json:"compression"`
	RateLimit   *MiddlewareItemConfig `yaml:"rate_limit" json:"rate_limit"`
}

type MiddlewareItemConfig struct {
	Enabled bool                   `yaml:"enabled" json:"enabled"`
	Weight  int                    `yaml:"weight" json:"weight" validate:"min=0"`
	Params  map[string]interface{} `yaml:"params" json:"params"`
}

type MetricsConfig struct {
	Enabled bool        `yaml:"enabled" json:"enabled"`
	Type    string      `yaml:"type" json:"type"`
	Path    string      `yaml:"path" json:"path"`
	Config  interface{} `yaml:"config" json:"config"`
}

type HealthConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

type CronConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	Timezone    string `yaml:"timezone" json:"timezone"`
	RefreshSpec string `yaml:"refresh_spec" json:"refresh_spec"`
}
