package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:              "8080",
		StorageBackend:    "memory",
		JWTSecretKey:      "secret",
		AdminPasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		TokenTTLHours:     24,
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiredSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecretKey = ""
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET_KEY")

	cfg = validConfig()
	cfg.AdminPasswordHash = ""
	assert.ErrorContains(t, cfg.Validate(), "ADMIN_PASSWORD_HASH")

	cfg = validConfig()
	cfg.TokenTTLHours = 0
	assert.ErrorContains(t, cfg.Validate(), "TOKEN_TTL_HOURS")
}

func TestValidateBackendParams(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.StorageBackend = "etcd" }, "unknown STORAGE_BACKEND"},
		{"sqlite without path", func(c *Config) { c.StorageBackend = "sqlite" }, "SQLITE_PATH"},
		{"postgres without url", func(c *Config) { c.StorageBackend = "postgres" }, "DATABASE_URL"},
		{"redis without addr", func(c *Config) { c.StorageBackend = "redis" }, "REDIS_ADDR"},
		{"clickhouse without host", func(c *Config) { c.StorageBackend = "clickhouse" }, "CLICKHOUSE_HOST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := validConfig()
	cfg.TokenTTLHours = 48
	cfg.RateLimitWindowMinutes = 2
	cfg.LoginRateLimitWindowMinutes = 15

	assert.Equal(t, 48*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 2*time.Minute, cfg.RateLimitWindow())
	assert.Equal(t, 15*time.Minute, cfg.LoginRateLimitWindow())
}
