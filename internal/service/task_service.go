package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker/internal/domain"
	"github.com/phrazzld/tasker/internal/platform/logger"
	"github.com/phrazzld/tasker/internal/store"
)

// TaskService provides task-related operations
type TaskService interface {
	// ListTasks returns every task, newest first
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// CreateTask validates and persists a new task
	CreateTask(ctx context.Context, title string, deadline *time.Time) (*domain.Task, error)

	// DeleteTask removes a task by ID and returns what was removed
	DeleteTask(ctx context.Context, id string) (*domain.Task, error)
}

// HealthChecker reports whether the service's dependencies are reachable.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// DefaultTaskService implements TaskService and HealthChecker on a store.TaskStore
type DefaultTaskService struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

var (
	_ TaskService   = (*DefaultTaskService)(nil)
	_ HealthChecker = (*DefaultTaskService)(nil)
)

// NewTaskService creates a new TaskService
// It returns an error if the store is nil.
func NewTaskService(taskStore store.TaskStore, logger *slog.Logger) (*DefaultTaskService, error) {
	if taskStore == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "taskStore cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultTaskService{
		taskStore: taskStore,
		logger:    logger.With("component", "task_service"),
	}, nil
}

// ListTasks implements TaskService.ListTasks
func (s *DefaultTaskService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.taskStore.ListAll(ctx)
	if err != nil {
		log.Error("failed to list tasks", "error", err)
		return nil, NewTaskServiceError("list_tasks", "failed to retrieve tasks", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	return tasks, nil
}

// CreateTask implements TaskService.CreateTask
// The task is validated before the store is touched; validation failures are
// returned unwrapped so callers can match domain.ErrValidation.
func (s *DefaultTaskService) CreateTask(
	ctx context.Context,
	title string,
	deadline *time.Time,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(title, deadline)
	if err != nil {
		log.Debug("rejected invalid task", "error", err)
		return nil, err
	}

	if err := s.taskStore.Insert(ctx, task); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		log.Error("failed to save task", "error", err)
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created", "task_id", task.ID)
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *DefaultTaskService) DeleteTask(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for delete", "task_id", id)
			return nil, ErrTaskNotFound
		}
		log.Error("failed to delete task", "error", err, "task_id", id)
		return nil, NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted", "task_id", id)
	return task, nil
}

// CheckHealth implements HealthChecker. Stores that cannot report
// connectivity are assumed healthy.
func (s *DefaultTaskService) CheckHealth(ctx context.Context) error {
	pinger, ok := s.taskStore.(store.Pinger)
	if !ok {
		return nil
	}
	if err := pinger.Ping(ctx); err != nil {
		return NewTaskServiceError("check_health", "store unreachable", err)
	}
	return nil
}
