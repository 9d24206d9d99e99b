package ui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/tasker/internal/client"
	"github.com/phrazzld/tasker/internal/domain"
)

// Notification texts shown to the user.
const (
	MsgLoadFailed   = "Failed to load tasks"
	MsgTitleMissing = "Please enter a task title"
	MsgAdded        = "Task added"
	MsgAddFailed    = "Failed to add task"
	MsgDeleted      = "Task deleted"
	MsgDeleteFailed = "Delete failed"
	MsgDeleteGone   = "Delete failed: task not found"
)

// API is the subset of *client.Client the controller needs.
type API interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, title string) (domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// Controller applies user actions to a State. Every failure becomes a
// notification and leaves the previous state intact.
type Controller struct {
	state    *State
	api      API
	notifier Notifier
	logger   *slog.Logger
}

// NewController creates a Controller over state. A nil state starts empty;
// a nil logger uses slog.Default.
func NewController(state *State, api API, notifier Notifier, logger *slog.Logger) *Controller {
	if state == nil {
		state = &State{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		state:    state,
		api:      api,
		notifier: notifier,
		logger:   logger.With("component", "ui_controller"),
	}
}

// State returns the state being controlled.
func (c *Controller) State() *State {
	return c.state
}

// Load replaces the task list with the server's. Loading is cleared on both
// success and failure; on failure the previous list is kept.
func (c *Controller) Load(ctx context.Context) {
	c.state.Loading = true
	defer func() { c.state.Loading = false }()

	tasks, err := c.api.List(ctx)
	if err != nil {
		c.logger.Error("failed to load tasks", "error", err, "unreachable", client.IsNetworkError(err))
		c.notifier.Error(MsgLoadFailed)
		return
	}
	c.state.Tasks = tasks
}

// Add creates a task and prepends the server's copy to the list without
// refetching. It reports whether the caller should clear its input.
func (c *Controller) Add(ctx context.Context, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		c.notifier.Error(MsgTitleMissing)
		return false
	}

	task, err := c.api.Create(ctx, title)
	if err != nil {
		c.logger.Error("failed to add task", "error", err, "unreachable", client.IsNetworkError(err))
		c.notifier.Error(MsgAddFailed)
		return false
	}

	c.state.Tasks = append([]domain.Task{task}, c.state.Tasks...)
	c.notifier.Success(MsgAdded)
	return true
}

// Delete removes a task once the server confirms. Nothing is removed locally
// when the request fails, including when the server no longer has the task.
func (c *Controller) Delete(ctx context.Context, id string) bool {
	if err := c.api.Delete(ctx, id); err != nil {
		c.logger.Error("failed to delete task", "error", err, "task_id", id,
			"unreachable", client.IsNetworkError(err))
		if client.IsNotFound(err) {
			c.notifier.Error(MsgDeleteGone)
		} else {
			c.notifier.Error(MsgDeleteFailed)
		}
		return false
	}

	if i := c.state.indexOf(id); i >= 0 {
		c.state.Tasks = append(c.state.Tasks[:i:i], c.state.Tasks[i+1:]...)
	}
	c.notifier.Success(MsgDeleted)
	return true
}
