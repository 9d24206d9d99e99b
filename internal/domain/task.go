package domain

import (
	"strings"
	"time"
)

// ErrEmptyTaskTitle is returned when a task title is empty or only whitespace.
var ErrEmptyTaskTitle = NewValidationError("title", "is required", ErrEmptyContent)

// Task is a single to-do item.
//
// ID and CreatedAt are assigned by the store at insertion and never change
// afterwards. Tasks are not edited in place; the only transitions are create
// and delete.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NormalizeTitle trims leading and trailing whitespace from a title.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// NewTask builds an unsaved Task from user input. The title is normalized
// before validation, so "  Buy milk  " becomes "Buy milk" and "   " is rejected.
// ID and CreatedAt stay zero until the store inserts the task.
func NewTask(title string, deadline *time.Time) (*Task, error) {
	task := &Task{
		Title: NormalizeTitle(title),
	}
	if deadline != nil {
		d := deadline.UTC()
		task.Deadline = &d
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks that the task can be persisted.
func (t *Task) Validate() error {
	if NormalizeTitle(t.Title) == "" {
		return ErrEmptyTaskTitle
	}
	return nil
}
