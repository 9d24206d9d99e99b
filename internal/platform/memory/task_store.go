// Package memory provides an in-process implementation of store.TaskStore.
// It backs the "memory" database driver for local development and is the
// store used by the HTTP-level tests.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker/internal/domain"
	"github.com/phrazzld/tasker/internal/platform/logger"
	"github.com/phrazzld/tasker/internal/store"
)

// TaskStore keeps tasks in a map guarded by a RWMutex.
type TaskStore struct {
	mu     sync.RWMutex
	tasks  map[string]domain.Task
	clock  *store.MonotonicClock
	logger *slog.Logger
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates an empty in-memory store.
// If logger is nil, a default logger will be used.
func NewTaskStore(logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		tasks:  make(map[string]domain.Task),
		clock:  store.NewMonotonicClock(0),
		logger: logger.With(slog.String("component", "memory_task_store")),
	}
}

// Insert implements store.TaskStore.Insert.
func (s *TaskStore) Insert(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during insert", slog.String("error", err.Error()))
		return err
	}

	s.mu.Lock()
	task.ID = uuid.NewString()
	task.CreatedAt = s.clock.Now()
	s.tasks[task.ID] = cloneTask(*task)
	s.mu.Unlock()

	log.Debug("task inserted", slog.String("task_id", task.ID))
	return nil
}

// ListAll implements store.TaskStore.ListAll.
func (s *TaskStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	s.mu.RLock()
	tasks := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		c := cloneTask(t)
		tasks = append(tasks, &c)
	}
	s.mu.RUnlock()

	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})

	logger.FromContextOrDefault(ctx, s.logger).Debug("tasks listed", slog.Int("count", len(tasks)))
	return tasks, nil
}

// DeleteByID implements store.TaskStore.DeleteByID.
func (s *TaskStore) DeleteByID(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	task, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	if !ok {
		log.Debug("task not found", slog.String("task_id", id))
		return nil, store.ErrTaskNotFound
	}

	log.Debug("task deleted", slog.String("task_id", id))
	return &task, nil
}

// Ping implements store.Pinger. The memory store is always available.
func (s *TaskStore) Ping(context.Context) error {
	return nil
}

func cloneTask(t domain.Task) domain.Task {
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	return t
}
