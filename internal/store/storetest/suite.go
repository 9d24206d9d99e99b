// Package storetest provides a conformance suite for store.TaskStore
// implementations. Each backend package runs the same suite so that ordering,
// round-trip and not-found semantics are identical regardless of the database.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/tasker/internal/domain"
	"github.com/phrazzld/tasker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store for a single subtest. Cleanup should be
// registered on t.
type Factory func(t *testing.T) store.TaskStore

// Options tunes the suite for a backend.
type Options struct {
	// MissingID is a well-formed ID that does not exist in the store.
	// Defaults to "ghost".
	MissingID string

	// MalformedIDs are IDs the backend cannot parse. They must resolve to
	// store.ErrTaskNotFound rather than a storage error.
	MalformedIDs []string

	// SkipConcurrency disables the concurrent insert test.
	SkipConcurrency bool
}

// Run executes the full conformance suite against the store produced by newStore.
func Run(t *testing.T, newStore Factory, opts Options) {
	t.Helper()

	if opts.MissingID == "" {
		opts.MissingID = "ghost"
	}
	if len(opts.MalformedIDs) == 0 {
		opts.MalformedIDs = []string{"ghost", "not a valid id", "%00"}
	}

	t.Run("InsertAssignsIDAndCreatedAt", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		task := mustNewTask(t, "  Buy milk  ", nil)
		before := time.Now().Add(-time.Second)
		require.NoError(t, s.Insert(ctx, task))

		assert.NotEmpty(t, task.ID, "store must assign an ID")
		assert.Equal(t, "Buy milk", task.Title)
		assert.False(t, task.CreatedAt.IsZero(), "store must assign CreatedAt")
		assert.True(t, task.CreatedAt.After(before), "CreatedAt should be close to now")
		assert.Equal(t, time.UTC, task.CreatedAt.Location())
	})

	t.Run("InsertRejectsInvalidTask", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		err := s.Insert(ctx, &domain.Task{Title: "   "})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation), "expected validation error, got %v", err)

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks, "rejected task must not be persisted")
	})

	t.Run("ListAllEmpty", func(t *testing.T) {
		s := newStore(t)

		tasks, err := s.ListAll(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, tasks, "empty store must return a non-nil slice")
		assert.Len(t, tasks, 0)
	})

	t.Run("ListAllNewestFirst", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var inserted []*domain.Task
		for _, title := range []string{"A", "B", "C"} {
			task := mustNewTask(t, title, nil)
			require.NoError(t, s.Insert(ctx, task))
			inserted = append(inserted, task)
		}

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 3)

		assert.Equal(t, []string{"C", "B", "A"}, titles(tasks))
		for i := 1; i < len(tasks); i++ {
			assert.True(t, tasks[i-1].CreatedAt.After(tasks[i].CreatedAt),
				"task %d (%v) should be newer than task %d (%v)",
				i-1, tasks[i-1].CreatedAt, i, tasks[i].CreatedAt)
		}
		assert.Equal(t, inserted[2].ID, tasks[0].ID)
		assert.Equal(t, inserted[0].ID, tasks[2].ID)
	})

	t.Run("InsertListRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		deadline := time.Date(2030, time.January, 2, 3, 4, 5, 0, time.UTC)
		withDeadline := mustNewTask(t, "Renew passport", &deadline)
		require.NoError(t, s.Insert(ctx, withDeadline))

		plain := mustNewTask(t, "Water plants", nil)
		require.NoError(t, s.Insert(ctx, plain))

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 2)

		assertSameTask(t, plain, tasks[0])
		assertSameTask(t, withDeadline, tasks[1])
	})

	t.Run("DeleteExisting", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		keep := mustNewTask(t, "Keep me", nil)
		require.NoError(t, s.Insert(ctx, keep))
		target := mustNewTask(t, "Delete me", nil)
		require.NoError(t, s.Insert(ctx, target))

		deleted, err := s.DeleteByID(ctx, target.ID)
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assertSameTask(t, target, deleted)

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, keep.ID, tasks[0].ID)

		again, err := s.DeleteByID(ctx, target.ID)
		assert.Nil(t, again)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("DeleteMissingLeavesStoreUnchanged", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		task := mustNewTask(t, "Survivor", nil)
		require.NoError(t, s.Insert(ctx, task))

		ids := append([]string{opts.MissingID}, opts.MalformedIDs...)
		for _, id := range ids {
			deleted, err := s.DeleteByID(ctx, id)
			assert.Nil(t, deleted, "id %q", id)
			assert.ErrorIs(t, err, store.ErrTaskNotFound, "id %q", id)
			assert.True(t, store.IsNotFoundError(err), "id %q", id)
		}

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assertSameTask(t, task, tasks[0])
	})

	if opts.SkipConcurrency {
		return
	}

	t.Run("ConcurrentInserts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const n = 20
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				task, err := domain.NewTask(fmt.Sprintf("task %02d", i), nil)
				if err != nil {
					errs <- err
					return
				}
				errs <- s.Insert(ctx, task)
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		tasks, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, n)

		seen := make(map[string]struct{}, n)
		for _, task := range tasks {
			seen[task.ID] = struct{}{}
		}
		assert.Len(t, seen, n, "IDs must be unique")
		assert.True(t, sort.SliceIsSorted(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}), "tasks must be ordered newest first")
	})
}

func mustNewTask(t *testing.T, title string, deadline *time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(title, deadline)
	require.NoError(t, err)
	return task
}

func titles(tasks []*domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func assertSameTask(t *testing.T, want, got *domain.Task) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt),
		"createdAt mismatch: want %v, got %v", want.CreatedAt, got.CreatedAt)
	if want.Deadline == nil {
		assert.Nil(t, got.Deadline)
		return
	}
	require.NotNil(t, got.Deadline)
	assert.True(t, want.Deadline.Equal(*got.Deadline),
		"deadline mismatch: want %v, got %v", *want.Deadline, *got.Deadline)
}
