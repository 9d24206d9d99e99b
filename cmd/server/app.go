package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasker/internal/config"
	"github.com/phrazzld/tasker/internal/service"
	"github.com/phrazzld/tasker/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	taskStore   store.TaskStore
	taskService *service.DefaultTaskService
}

// newApplication wires the service layer onto an already opened store.
func newApplication(cfg *config.Config, logger *slog.Logger, taskStore store.TaskStore) (*application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	taskService, err := service.NewTaskService(taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	return &application{
		config:      cfg,
		logger:      logger,
		taskStore:   taskStore,
		taskService: taskService,
	}, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup(ctx context.Context) {
	closeTaskStore(ctx, app.taskStore, app.logger)
	app.logger.Info("Application shutdown completed")
}
