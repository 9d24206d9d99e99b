// Package ui holds the client-side view of the task list: the state being
// displayed, the controller that mutates it in response to user actions, and
// a text renderer.
package ui

import "github.com/phrazzld/tasker/internal/domain"

// State is everything the renderer needs. Controllers own a *State; nothing
// else mutates it.
type State struct {
	Tasks   []domain.Task
	Loading bool
}

// indexOf returns the position of the task with id, or -1.
func (s *State) indexOf(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}
