package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_ENV"` specify the environment variable name.
// `default:""` provides a default value if the env var is not set.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // debug, info, warn, error
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Postgres   PostgresConfig
	Catalog    CatalogConfig
	Sessions   SessionConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
	RateLimit    float64       `envconfig:"HTTP_SERVER_RATE_LIMIT" default:"20"` // requests per second per client IP; 0 disables
	RateBurst    int           `envconfig:"HTTP_SERVER_RATE_BURST" default:"40"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// PostgresConfig holds PostgreSQL database connection details.
// Only required when the catalog source is "postgres".
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName, pc.SSLMode)
}

// CatalogConfig controls where products come from and how browsing behaves.
type CatalogConfig struct {
	Source           string  `envconfig:"CATALOG_SOURCE" default:"file"` // file or postgres
	File             string  `envconfig:"CATALOG_FILE" default:"testdata/catalog.yaml"`
	PageSize         int     `envconfig:"CATALOG_PAGE_SIZE" default:"12"`
	PriceCeiling     float64 `envconfig:"CATALOG_PRICE_CEILING" default:"1000"`
	AvailabilityMode string  `envconfig:"CATALOG_AVAILABILITY_MODE" default:"intersect"` // intersect or union
}

// SessionConfig selects the browse-session snapshot store.
type SessionConfig struct {
	Backend  string        `envconfig:"SESSION_BACKEND" default:"memory"` // memory or redis
	TTL      time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	RedisURL string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks enum values and sizes that envconfig can't express.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "file":
		if c.Catalog.File == "" {
			return fmt.Errorf("CATALOG_FILE is required when CATALOG_SOURCE=file")
		}
	case "postgres":
		if c.Postgres.Host == "" || c.Postgres.User == "" || c.Postgres.DBName == "" {
			return fmt.Errorf("POSTGRES_HOST, POSTGRES_USER and POSTGRES_DBNAME are required when CATALOG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q (want file or postgres)", c.Catalog.Source)
	}
	switch c.Catalog.AvailabilityMode {
	case "intersect", "union":
	default:
		return fmt.Errorf("unknown CATALOG_AVAILABILITY_MODE %q (want intersect or union)", c.Catalog.AvailabilityMode)
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Catalog.PriceCeiling <= 0 {
		return fmt.Errorf("CATALOG_PRICE_CEILING must be positive, got %v", c.Catalog.PriceCeiling)
	}
	switch c.Sessions.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q (want memory or redis)", c.Sessions.Backend)
	}
	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Sessions.TTL)
	}
	return nil
}
