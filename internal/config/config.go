package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Store     StoreConfig
	DB        DBConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
	OTEL      OTELConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
	BodyLimit       int    `envconfig:"BODY_LIMIT" default:"1048576"`  // bytes
}

// APIConfig holds the route prefix for the coupon API.
type APIConfig struct {
	BasePath string `envconfig:"API_BASE_PATH" default:"/api"`
}

// StoreConfig selects the coupon store backend.
type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"memory"` // memory|postgres
	Seed   bool   `envconfig:"STORE_SEED" default:"true"`
}

// DBConfig holds database-related configuration. Only used when STORE_DRIVER=postgres.
// WARNING: Default password is for local development only.
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"coupon_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// RateLimitConfig holds the per-IP token bucket settings. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_RPS" default:"50"`
	Burst int     `envconfig:"RATE_BURST" default:"100"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"METRICS_PATH" default:"/metrics"`
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool    `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint    string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	Insecure    bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	ServiceName string  `envconfig:"OTEL_SERVICE_NAME" default:"coupon-api"`
	SampleRatio float64 `envconfig:"OTEL_TRACES_SAMPLER_ARG" default:"1.0"`
}

// Load reads an optional .env file, then parses environment variables into the Config struct.
// Variables already present in the environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.API.BasePath = normalizeBasePath(c.API.BasePath)
}

// Validate checks values envconfig cannot express through tags.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("SERVER_PORT must not be empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.Server.BodyLimit <= 0 {
		return errors.New("BODY_LIMIT must be > 0")
	}
	switch c.Store.Driver {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of: %s, %s", StoreMemory, StorePostgres)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if c.RateLimit.RPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if c.RateLimit.Burst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// normalizeBasePath ensures a leading slash and strips trailing ones. "/" and "" become "".
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
