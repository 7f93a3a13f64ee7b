package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr            string
	StorefrontURL   string
	DatabaseURL     string
	JWTSecret       string
	LogLevel        string
	Locale          string
	SubmitTimeout   time.Duration
	UpstreamTimeout time.Duration
	SessionTTL      time.Duration
	SweepInterval   time.Duration
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real env vars win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:            getEnv("CHECKOUT_ADDR", ":8080"),
		StorefrontURL:   strings.TrimRight(getEnv("STOREFRONT_API_URL", "http://localhost:3000/api"), "/"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Locale:          getEnv("LOCALE", "en"),
		SubmitTimeout:   getEnvAsDuration("SUBMIT_TIMEOUT", 30*time.Second),
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		SessionTTL:      getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		SweepInterval:   getEnvAsDuration("SWEEP_INTERVAL", 10*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.StorefrontURL == "" {
		return fmt.Errorf("STOREFRONT_API_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if c.SubmitTimeout <= 0 || c.UpstreamTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.SessionTTL <= 0 || c.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_TTL and SWEEP_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("45s", "2h"); anything
// unparsable falls back to the default.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}
