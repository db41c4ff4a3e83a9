package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration, loadable from
// environment variables (ENTREGA_ prefix), flags, or YAML config files.
type Config struct {
	Addr              string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DeliveryFee       string `default:"4.99" usage:"Fixed per-order delivery fee" flag:"delivery-fee"`
	DefaultEtaMinutes int    `default:"35" usage:"Estimated delivery time stamped on new orders" flag:"default-eta-minutes"`
	Simulation        SimulationConfig
	RateLimit         RateLimitConfig
	CORS              CORSConfig
	Graceful          GracefulConfig

	// deliveryFee is DeliveryFee parsed during LoadConfig.
	deliveryFee decimal.Decimal
}

// SimulationConfig controls the delivery status simulation.
type SimulationConfig struct {
	// StageInterval is the time between consecutive order status
	// transitions. Demo-friendly defaults, not real delivery ETAs.
	StageInterval time.Duration `default:"20s" usage:"Delay between order status transitions" flag:"stage-interval"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// DeliveryFeeAmount returns the parsed delivery fee.
func (c *Config) DeliveryFeeAmount() decimal.Decimal {
	return c.deliveryFee
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ENTREGA",
		Files:     []string{"config.yaml", "/etc/entrega/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	fee, err := decimal.NewFromString(cfg.DeliveryFee)
	if err != nil {
		return nil, errors.Wrapf(err, "parse delivery fee %q", cfg.DeliveryFee)
	}
	if fee.IsNegative() {
		return nil, errors.Errorf("delivery fee must not be negative: %s", cfg.DeliveryFee)
	}
	cfg.deliveryFee = fee

	if cfg.DefaultEtaMinutes <= 0 {
		return nil, errors.Errorf("default ETA must be positive: %d", cfg.DefaultEtaMinutes)
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like PORT to the
// application's ENTREGA_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
