package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasker/internal/config"
	"github.com/phrazzld/tasker/internal/platform/aztables"
	"github.com/phrazzld/tasker/internal/platform/memory"
	"github.com/phrazzld/tasker/internal/platform/mongo"
	"github.com/phrazzld/tasker/internal/platform/postgres"
	"github.com/phrazzld/tasker/internal/platform/redis"
	"github.com/phrazzld/tasker/internal/store"
)

type storeOpener func(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.TaskStore, error)

// storeOpeners maps each config.Driver* value to its backend constructor.
// database.collection names the Mongo collection, the Azure table and the
// Redis key prefix; Postgres always uses the migrated "tasks" table.
var storeOpeners = map[string]storeOpener{
	config.DriverMongo: func(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.TaskStore, error) {
		return mongo.Open(ctx, cfg.URI, cfg.Name, cfg.Collection, cfg.ConnectTimeout, logger)
	},
	config.DriverPostgres: func(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.TaskStore, error) {
		return postgres.Open(ctx, cfg.URI, logger)
	},
	config.DriverRedis: func(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.TaskStore, error) {
		return redis.Open(ctx, cfg.URI, cfg.Collection, logger)
	},
	config.DriverAzTables: func(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.TaskStore, error) {
		return aztables.Open(ctx, cfg.URI, cfg.Collection, logger)
	},
	config.DriverMemory: func(_ context.Context, _ config.DatabaseConfig, logger *slog.Logger) (store.TaskStore, error) {
		return memory.NewTaskStore(logger), nil
	},
}

// openTaskStore connects to the configured backend.
func openTaskStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.TaskStore, error) {
	open, ok := storeOpeners[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	s, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Driver, err)
	}

	logger.Info("Task store ready", "driver", cfg.Driver)
	return s, nil
}

// closeTaskStore releases the store's connection if it owns one.
func closeTaskStore(ctx context.Context, s store.TaskStore, logger *slog.Logger) {
	closer, ok := s.(store.Closer)
	if !ok {
		return
	}
	if err := closer.Close(ctx); err != nil {
		logger.Error("Error closing task store", "error", err)
	}
}
