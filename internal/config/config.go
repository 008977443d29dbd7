package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultPort              = "8080"
	defaultTokenTTL          = 24 * time.Hour
	defaultReconcileInterval = time.Minute
	defaultPresenceTTL       = 45 * time.Second
)

type Config struct {
	DatabaseURL   string
	RedisURL      string
	JWTSecret     string
	TokenTTL      time.Duration
	Port          string
	WebhookSecret string

	LogLevel  string
	LogFormat string

	ReconcileInterval time.Duration
	PresenceTTL       time.Duration
}

// LoadEnvFiles loads .env.local, falling back to .env. An explicit file
// replaces both. Variables already set in the environment win.
func LoadEnvFiles(explicit string) {
	if explicit != "" {
		if err := godotenv.Load(explicit); err != nil {
			log.Warn().Err(err).Str("file", explicit).Msg("env file not loaded")
		}
		return
	}
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg(".env not found, using environment variables")
		}
	}
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Port:          envOr("PORT", defaultPort),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		LogFormat:     strings.ToLower(envOr("LOG_FORMAT", "console")),
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", defaultTokenTTL); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = durationEnv("RECONCILE_INTERVAL", defaultReconcileInterval); err != nil {
		return nil, err
	}
	if cfg.PresenceTTL, err = durationEnv("PRESENCE_TTL", defaultPresenceTTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
