// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Risk assessment service
	RiskAPIURL  string        // Base URL of the risk scoring backend
	RiskTimeout time.Duration // Per-request timeout for assessment calls

	// Payments
	StripeAPIKey string // Optional; charges are simulated when unset

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint; tracing disabled when unset
}

// Defaults
const (
	DefaultPort        = "8080"
	DefaultEnv         = "development"
	DefaultLogLevel    = "info"
	DefaultRiskAPIURL  = "http://localhost:8000"
	DefaultRiskTimeout = 10 * time.Second
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", DefaultPort),
		Env:          getEnv("ENV", DefaultEnv),
		LogLevel:     getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:  os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		RiskAPIURL:   getEnv("RISK_API_URL", DefaultRiskAPIURL),
		RiskTimeout:  getEnvDuration("RISK_TIMEOUT_SECONDS", DefaultRiskTimeout),
		StripeAPIKey: os.Getenv("STRIPE_API_KEY"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and well-formed
func (c *Config) Validate() error {
	if c.RiskAPIURL == "" {
		return fmt.Errorf("RISK_API_URL is required")
	}
	u, err := url.Parse(c.RiskAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("RISK_API_URL must be an absolute URL: %q", c.RiskAPIURL)
	}
	if c.RiskTimeout <= 0 {
		return fmt.Errorf("RISK_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvDuration reads a whole-seconds env var as a duration.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
