package store

import (
	"fmt"

	"portalar/api/config"
)

// New selects the storage adapter for cfg.StorageBackend. The adapter is not
// connected yet; callers must Initialize it and treat failure as fatal.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath), nil
	case "postgres":
		return NewPostgresStore(cfg.DatabaseURL), nil
	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	case "clickhouse":
		return NewClickHouseStore(cfg), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND: %s", cfg.StorageBackend)
	}
}
