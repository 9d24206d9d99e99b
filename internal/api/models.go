package api

import (
	"time"

	"github.com/phrazzld/tasker/internal/domain"
)

// CreateTaskRequest defines the payload for POST /tasks.
type CreateTaskRequest struct {
	Title string `json:"title" validate:"notblank"`
	// Deadline is parsed as RFC 3339 by the handler so a bad value can be
	// reported separately from malformed JSON.
	Deadline *string `json:"deadline,omitempty"`
}

// TaskResponse is the JSON representation of a task.
type TaskResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// DeleteTaskResponse confirms a deletion.
type DeleteTaskResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID,
		Title:     task.Title,
		Deadline:  task.Deadline,
		CreatedAt: task.CreatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	return out
}
