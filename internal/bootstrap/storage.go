package bootstrap

import (
	"context"
	"fmt"

	"apin-chat/internal/config"
	"apin-chat/pkg/database"
	"apin-chat/pkg/kvstore"
	"apin-chat/pkg/kvstore/memory"
	"apin-chat/pkg/kvstore/postgres"
	"apin-chat/pkg/kvstore/redis"
	"apin-chat/pkg/kvstore/sqlite"
)

// NewKVStore opens the blob store selected by STORAGE_DRIVER.
func NewKVStore(ctx context.Context, cfg config.StorageConfig) (kvstore.Store, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewStore(), nil
	case "sqlite", "":
		return sqlite.Open(cfg.SQLitePath)
	case "redis":
		return redis.NewStore(ctx, cfg.RedisURL)
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("DB_CONNECTION_STRING is required for the postgres driver")
		}
		db, err := database.NewGormDBFromDSN(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return postgres.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
