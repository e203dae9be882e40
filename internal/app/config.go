package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds runtime configuration for the back-office.
type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// RedisAddr enables the dashboard cache. Empty keeps reports uncached.
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	ReportCacheTTL time.Duration `envconfig:"REPORT_CACHE_TTL" default:"5m"`

	ReportTopN          int  `envconfig:"REPORT_TOP_N" default:"5"`
	ReportRecentN       int  `envconfig:"REPORT_RECENT_N" default:"5"`
	ReportExcludeVoided bool `envconfig:"REPORT_EXCLUDE_VOIDED" default:"false"`

	DefaultTaxRate       decimal.Decimal `envconfig:"DEFAULT_TAX_RATE" default:"0"`
	DefaultPaymentMethod string          `envconfig:"DEFAULT_PAYMENT_METHOD" default:"Cash"`

	SeedSampleData bool `envconfig:"SEED_SAMPLE_DATA" default:"true"`

	// OpsAddr starts the read-only ops server. Empty skips it.
	OpsAddr           string        `envconfig:"OPS_ADDR"`
	OpsReadTimeout    time.Duration `envconfig:"OPS_READ_TIMEOUT" default:"15s"`
	OpsWriteTimeout   time.Duration `envconfig:"OPS_WRITE_TIMEOUT" default:"15s"`
	OpsRequestTimeout time.Duration `envconfig:"OPS_REQUEST_TIMEOUT" default:"30s"`
	OpsRateLimit      int           `envconfig:"OPS_RATE_LIMIT" default:"60"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ReportTopN <= 0 || cfg.ReportRecentN <= 0 {
		return nil, errors.New("report list sizes must be positive")
	}
	if cfg.DefaultTaxRate.IsNegative() {
		return nil, errors.New("default tax rate must not be negative")
	}
	if cfg.OpsRateLimit <= 0 {
		return nil, errors.New("ops rate limit must be positive")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// CacheEnabled reports whether a Redis address is configured.
func (c *Config) CacheEnabled() bool {
	return c != nil && c.RedisAddr != ""
}
