package memory

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/tasker/internal/domain"
	"github.com/phrazzld/tasker/internal/store"
	"github.com/phrazzld/tasker/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.TaskStore {
		return NewTaskStore(nil)
	}, storetest.Options{})
}

func TestTaskStoreReturnsCopies(t *testing.T) {
	s := NewTaskStore(nil)
	ctx := context.Background()

	deadline := time.Date(2030, time.March, 1, 0, 0, 0, 0, time.UTC)
	task, err := domain.NewTask("Original", &deadline)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, task))

	// Mutating the caller's copy must not reach the store.
	task.Title = "Mutated"
	*task.Deadline = deadline.Add(time.Hour)

	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Original", tasks[0].Title)
	assert.True(t, deadline.Equal(*tasks[0].Deadline))

	// Nor must mutating a listed task.
	tasks[0].Title = "Mutated again"
	again, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Original", again[0].Title)
}

func TestTaskStorePing(t *testing.T) {
	assert.NoError(t, NewTaskStore(nil).Ping(context.Background()))
}
