package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is built once in main and passed down. Nothing else in the codebase
// reads the process environment.
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	// Storage backend selector: sqlite, postgres, redis, clickhouse or memory.
	// Exactly one adapter is active per process; switching requires a restart.
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"sqlite"`

	SQLitePath string `envconfig:"SQLITE_PATH" default:"./data/portalar.db"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	ClickHouseHost       string `envconfig:"CLICKHOUSE_HOST" default:""`
	ClickHouseNativePort int    `envconfig:"CLICKHOUSE_NATIVE_PORT" default:"9000"`
	ClickHouseDBName     string `envconfig:"CLICKHOUSE_DB_NAME" default:""`
	ClickHouseUsername   string `envconfig:"CLICKHOUSE_USERNAME" default:""`
	ClickHousePassword   string `envconfig:"CLICKHOUSE_PASSWORD" default:""`

	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" default:""`
	JWTSecretKey      string `envconfig:"JWT_SECRET_KEY" default:""`
	TokenTTLHours     int    `envconfig:"TOKEN_TTL_HOURS" default:"24"`

	FrontendOrigin string `envconfig:"FE_ORIGIN" default:"http://localhost:3000"`

	PerplexityAPIKey string `envconfig:"PERPLEXITY_API_KEY" default:""`
	PerplexityMock   bool   `envconfig:"PERPLEXITY_MOCK" default:"false"`

	RateLimitMax           int `envconfig:"RATE_LIMIT_MAX" default:"120"`
	RateLimitWindowMinutes int `envconfig:"RATE_LIMIT_WINDOW_MINUTES" default:"1"`

	LoginRateLimitMax           int `envconfig:"LOGIN_RATE_LIMIT_MAX" default:"5"`
	LoginRateLimitWindowMinutes int `envconfig:"LOGIN_RATE_LIMIT_WINDOW_MINUTES" default:"15"`
}

// Load parses the environment into a Config and validates it eagerly so a
// misconfigured process dies at startup instead of on first use.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required secrets and the connection parameters of the
// selected backend.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}
	if c.TokenTTLHours <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}

	switch c.StorageBackend {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case "clickhouse":
		if c.ClickHouseHost == "" || c.ClickHouseDBName == "" {
			return fmt.Errorf("CLICKHOUSE_HOST and CLICKHOUSE_DB_NAME are required for the clickhouse backend")
		}
	case "memory":
		// no parameters
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND: %s", c.StorageBackend)
	}
	return nil
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMinutes) * time.Minute
}

func (c *Config) LoginRateLimitWindow() time.Duration {
	return time.Duration(c.LoginRateLimitWindowMinutes) * time.Minute
}
