package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/juberthrdzz/vapi-voice-agent/pkg/config"
)

// Config holds all configuration for the voice agent service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Menu catalog file
	MenuPath string `env:"MENU_PATH" envDefault:"menu.json"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// TTLs
	CartTTL    int `env:"CART_TTL_HOURS" envDefault:"4"`
	OrderTTL   int `env:"ORDER_TTL_HOURS" envDefault:"24"`
	SessionTTL int `env:"SESSION_TTL_MINUTES" envDefault:"60"`

	// Cart limits
	MaxCartQuantity int `env:"MAX_CART_QUANTITY" envDefault:"50"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Kitchen webhook. Empty URL disables forwarding.
	KitchenWebhookURL string `env:"KITCHEN_WEBHOOK_URL" envDefault:""`
	RestaurantID      string `env:"RESTAURANT_ID" envDefault:""`
	KitchenOrderType  string `env:"KITCHEN_ORDER_TYPE" envDefault:"pickup"`

	// Tracing
	TracingEnabled  bool    `env:"OTEL_TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampler  float64 `env:"OTEL_TRACE_SAMPLER_RATIO" envDefault:"1.0"`

	// pprof access
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load voice agent config: %w", err)
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
	if c.MenuPath == "" {
		return fmt.Errorf("menu path must not be empty")
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("cart TTL must be at least 1 hour, got %d", c.CartTTL)
	}
	if c.OrderTTL < 1 {
		return fmt.Errorf("order TTL must be at least 1 hour, got %d", c.OrderTTL)
	}
	if c.SessionTTL < 1 {
		return fmt.Errorf("session TTL must be at least 1 minute, got %d", c.SessionTTL)
	}
	if c.MaxCartQuantity < 1 {
		return fmt.Errorf("max cart quantity must be positive, got %d", c.MaxCartQuantity)
	}
	if c.KitchenWebhookURL != "" && c.RestaurantID == "" {
		return fmt.Errorf("restaurant id is required when the kitchen webhook is enabled")
	}
	return nil
}

// CartTTLDuration returns the cart TTL as a duration.
func (c *Config) CartTTLDuration() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}

// OrderTTLDuration returns the order TTL as a duration.
func (c *Config) OrderTTLDuration() time.Duration {
	return time.Duration(c.OrderTTL) * time.Hour
}

// SessionTTLDuration returns the session TTL as a duration.
func (c *Config) SessionTTLDuration() time.Duration {
	return time.Duration(c.SessionTTL) * time.Minute
}
