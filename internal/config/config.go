// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultJWTSecret is the development signing key. Production refuses it.
const DefaultJWTSecret = "blogpress-dev-secret-do-not-use-in-prod"

// MinJWTSecretLength is the minimum signing key length accepted in production.
const MinJWTSecretLength = 32

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port     string `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// PostgreSQL connection
	DBHost         string `env:"POSTGRES_HOST" envDefault:"localhost"`
	DBPort         string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBUser         string `env:"POSTGRES_USER" envDefault:"blogpress"`
	DBPassword     string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	DBName         string `env:"POSTGRES_DB" envDefault:"blogpress"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`

	// Valkey (Redis-compatible cache)
	ValkeyHost     string `env:"VALKEY_HOST" envDefault:"localhost"`
	ValkeyPort     string `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`

	// Bearer credentials
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"blogpress-dev-secret-do-not-use-in-prod"`
	JWTAccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"60m"`
	JWTRefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`

	// Per-IP limiter on register/login/refresh
	AuthRateLimitRPS   float64 `env:"AUTH_RATE_LIMIT_RPS" envDefault:"1"`
	AuthRateLimitBurst int     `env:"AUTH_RATE_LIMIT_BURST" envDefault:"5"`

	TaxonomyCacheTTL time.Duration `env:"TAXONOMY_CACHE_TTL" envDefault:"5m"`
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing or unsafe in production mode.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == DefaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET is the development default and must not be used in production")
		}
		if len(cfg.JWTSecret) < MinJWTSecretLength {
			return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes long, got %d bytes",
				MinJWTSecretLength, len(cfg.JWTSecret))
		}
	}

	if cfg.JWTAccessTTL <= 0 || cfg.JWTRefreshTTL <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive")
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
