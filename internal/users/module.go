package users

import (
	"context"
	"fmt"

	"github.com/brizzai/moodlist/internal/config"
	"github.com/brizzai/moodlist/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg *config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.StorageMemory, "":
		logger.Warn("Using in-memory user storage (not persistent)")
		return NewMemoryStore(), nil

	case config.StorageSQLite:
		store, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("Using SQLite user storage", zap.String("path", cfg.SQLitePath))
		return store, nil

	case config.StorageFilesystem:
		store, err := NewFilesystemStore(cfg.DataPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Using filesystem user storage", zap.String("path", cfg.DataPath))
		return store, nil

	case config.StoragePostgres:
		store, err := OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Postgres user storage")
		return store, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("Using Redis user storage", zap.String("addr", cfg.Redis.Addr))
		return NewRedisStore(client), nil

	case config.StorageS3:
		store, err := NewS3Store(cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket, cfg.S3.UseSSL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 user storage",
			zap.String("endpoint", cfg.S3.Endpoint),
			zap.String("bucket", cfg.S3.Bucket),
		)
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func newStore(lc fx.Lifecycle, cfg *config.StorageConfig) (Store, error) {
	store, err := Open(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	if closer, ok := store.(Closer); ok {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return closer.Close() },
		})
	}
	return store, nil
}

// Module provides the configured Store.
var Module = fx.Module("users",
	fx.Provide(newStore),
)
