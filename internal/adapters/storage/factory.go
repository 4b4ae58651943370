package storage

import (
	"context"
	"fmt"

	"github.com/fokusplaner/core/internal/infrastructure/config"
	"github.com/fokusplaner/core/internal/infrastructure/database"
	"github.com/fokusplaner/core/internal/ports"
)

// Open builds the backend named by cfg.Backend
func Open(ctx context.Context, cfg config.StorageConfig) (ports.Storage, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return NewFileStorage(cfg.DataDir)

	case config.BackendMemory:
		return NewKVStorage(NewMemoryKV(), cfg.KeyPrefix, config.BackendMemory, "memory"), nil

	case config.BackendRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewKVStorage(NewRedisKV(client), cfg.KeyPrefix, config.BackendRedis, cfg.Redis.GetAddr()), nil

	case config.BackendSQL:
		db, err := database.New(cfg.SQL, cfg.DataDir)
		if err != nil {
			return nil, err
		}
		kv, err := NewSQLKV(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return NewKVStorage(kv, cfg.KeyPrefix, config.BackendSQL, db.Driver()), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
