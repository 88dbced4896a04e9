package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"todoapi/internal/adapter/cache"
	dbadapter "todoapi/internal/adapter/db"
	"todoapi/internal/adapter/filestore"
	"todoapi/internal/config"
	"todoapi/internal/core/ports"
)

// buildStore opens the backend named by STORE_DRIVER and, when REDIS_ADDR is
// set, puts the Redis list cache in front of it. The returned func releases
// every connection that was opened.
func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.TaskStore, func(), error) {
	var (
		store   ports.TaskStore
		closers []func()
	)

	switch cfg.StoreDriver {
	case config.StoreDriverFile:
		fileStore, err := filestore.New(cfg.DataPath,
			filestore.WithStrictRead(cfg.StrictRead),
			filestore.WithLogger(logger.Named("filestore")),
		)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using file store", zap.String("path", fileStore.Path()), zap.Bool("strict_read", cfg.StrictRead))
		store = fileStore
	case config.StoreDriverSQLite, config.StoreDriverMySQL:
		db, err := dbadapter.ConnectDB(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect %s: %w", cfg.StoreDriver, err)
		}
		closers = append(closers, func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close database connection", zap.Error(err))
			}
		})
		store = dbadapter.NewTaskStore(db)
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			// The cache is optional; keep serving from the backing store.
			logger.Warn("redis unreachable at startup", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", zap.Error(err))
			}
		})
		store = cache.New(store, client, cfg.CacheTTL, logger.Named("cache"))
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return store, closeAll, nil
}
