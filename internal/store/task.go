package store

import (
	"context"

	"github.com/phrazzld/tasker/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Implementations must be safe for concurrent use.
type TaskStore interface {
	// Insert persists a new task. The store assigns task.ID and task.CreatedAt;
	// any values already present in those fields are overwritten.
	// Returns a validation error from the domain Task if data is invalid.
	Insert(ctx context.Context, task *domain.Task) error

	// ListAll returns every task ordered by CreatedAt descending (newest first).
	// Ties are broken by ID descending. Returns an empty, non-nil slice if the
	// store holds no tasks.
	ListAll(ctx context.Context) ([]*domain.Task, error)

	// DeleteByID removes the task with the given ID and returns it.
	// Returns ErrTaskNotFound if no such task exists or if the ID cannot be
	// interpreted by the backend at all.
	DeleteByID(ctx context.Context, id string) (*domain.Task, error)
}

// Pinger is implemented by stores that can report backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by stores that own a connection.
type Closer interface {
	Close(ctx context.Context) error
}
