package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const PROD_STRING = "prod"

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	ProdOrigins string `envconfig:"PROD_ORIGINS"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`

	// StorageBackend selects where the catalog and the ledger live.
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"postgres"`
	DBDSN          string `envconfig:"DB_DSN"`
	DBMaxConns     int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	CatalogFile    string `envconfig:"CATALOG_FILE"`

	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessTokenTTL time.Duration `envconfig:"JWT_ACCESS_TOKEN_TTL" default:"15m"`

	// BookingTimeZone is the IANA zone all local hours and weekdays are
	// taken in. It has no default.
	BookingTimeZone string `envconfig:"BOOKING_TIMEZONE" required:"true"`

	RedisAddr            string        `envconfig:"REDIS_ADDR"`
	RedisPassword        string        `envconfig:"REDIS_PASSWORD"`
	AvailabilityCacheTTL time.Duration `envconfig:"AVAILABILITY_CACHE_TTL" default:"30s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogPath  string `envconfig:"LOG_PATH" default:"logs"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == PROD_STRING
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}
	return FromEnv()
}

// FromEnv decodes and validates the process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if strings.TrimSpace(c.BookingTimeZone) == "" {
		return fmt.Errorf("BOOKING_TIMEZONE is required")
	}
	switch c.StorageBackend {
	case BackendPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for the %s backend", BackendPostgres)
		}
	case BackendMemory:
		if c.CatalogFile == "" {
			return fmt.Errorf("CATALOG_FILE is required for the %s backend", BackendMemory)
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.IsProduction() && strings.TrimSpace(c.ProdOrigins) == "" {
		return fmt.Errorf("PROD_ORIGINS is required when APP_ENV=%s", PROD_STRING)
	}
	if c.AvailabilityCacheTTL < 0 {
		return fmt.Errorf("AVAILABILITY_CACHE_TTL cannot be negative")
	}
	return nil
}
