package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/gatemesh/storefront/pkg/config"
)

// Catalog source selection.
const (
	CatalogSourceStatic   = "static"
	CatalogSourcePostgres = "postgres"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Public origin used for checkout redirect URLs.
	BaseURL string `env:"STOREFRONT_BASE_URL" envDefault:"http://localhost:3000"`

	// Catalog source: static (seeded, in-memory) or postgres.
	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"static"`
	DatabaseURL   string `env:"DATABASE_URL" envDefault:""`

	// Redis cart mirror. Leave RedisAddr empty to keep carts in memory only.
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours (default: 7 days)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Stripe
	StripeSecretKey     string        `env:"STRIPE_SECRET_KEY" envDefault:""`
	StripeWebhookSecret string        `env:"STRIPE_WEBHOOK_SECRET" envDefault:""`
	StripeBaseURL       string        `env:"STRIPE_BASE_URL" envDefault:""`
	CheckoutTimeout     time.Duration `env:"CHECKOUT_TIMEOUT" envDefault:"30s"`

	// Telemetry demo buffer capacity per series.
	TelemetryCapacity int `env:"TELEMETRY_CAPACITY" envDefault:"288"`

	// Rate limiting per session or client IP.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"TRACING_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.CatalogSource {
	case CatalogSourceStatic:
	case CatalogSourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when CATALOG_SOURCE is postgres")
		}
	default:
		return fmt.Errorf("invalid catalog source: %q", c.CatalogSource)
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("cart TTL must be at least 1 hour, got %d", c.CartTTL)
	}
	if c.CheckoutTimeout <= 0 {
		return fmt.Errorf("checkout timeout must be positive, got %s", c.CheckoutTimeout)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("invalid rate limit: rps=%v burst=%d", c.RateLimitRPS, c.RateLimitBurst)
	}
	return nil
}
