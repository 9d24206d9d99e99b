package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasker/internal/api"
	"github.com/phrazzld/tasker/internal/domain"
	"github.com/phrazzld/tasker/internal/platform/memory"
	"github.com/phrazzld/tasker/internal/service"
	"github.com/phrazzld/tasker/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiServer struct {
	URL   string
	store *memory.TaskStore
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	taskStore := memory.NewTaskStore(nil)
	svc, err := service.NewTaskService(taskStore, nil)
	require.NoError(t, err)

	h := api.NewTaskHandler(svc, nil)
	r := chi.NewRouter()
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &apiServer{URL: srv.URL, store: taskStore}
}

func (s *apiServer) seed(t *testing.T, titles ...string) []*domain.Task {
	t.Helper()
	var out []*domain.Task
	for _, title := range titles {
		task, err := domain.NewTask(title, nil)
		require.NoError(t, err)
		require.NoError(t, s.store.Insert(context.Background(), task))
		out = append(out, task)
	}
	return out
}

func (s *apiServer) titles(t *testing.T) []string {
	t.Helper()
	tasks, err := s.store.ListAll(context.Background())
	require.NoError(t, err)
	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	return titles
}

// execute runs taskctl with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestList(t *testing.T) {
	srv := newAPIServer(t)

	out, errOut, err := execute(t, "", "--api", srv.URL, "list")
	require.NoError(t, err)
	assert.Equal(t, ui.EmptyText+"\n", out)
	assert.Empty(t, errOut)

	srv.seed(t, "Older", "Newer")
	out, _, err = execute(t, "", "--api", srv.URL, "ls")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1.  Newer"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2.  Older"), lines[1])
}

func TestListUnreachable(t *testing.T) {
	out, errOut, err := execute(t, "", "--api", "http://127.0.0.1:1", "list")
	require.NoError(t, err)
	assert.Equal(t, ui.EmptyText+"\n", out)
	assert.Equal(t, "✖ "+ui.MsgLoadFailed+"\n", errOut)
}

func TestAdd(t *testing.T) {
	srv := newAPIServer(t)
	srv.seed(t, "Existing")

	out, errOut, err := execute(t, "", "--api", srv.URL, "add", "Buy", "milk")
	require.NoError(t, err)
	assert.Equal(t, "✔ "+ui.MsgAdded+"\n", errOut)
	assert.Contains(t, out, "1.  Buy milk")
	assert.Contains(t, out, "2.  Existing")
	assert.Equal(t, []string{"Buy milk", "Existing"}, srv.titles(t))
}

func TestAddBlankTitle(t *testing.T) {
	srv := newAPIServer(t)

	_, errOut, err := execute(t, "", "--api", srv.URL, "add", "   ")
	require.NoError(t, err)
	assert.Equal(t, "✖ "+ui.MsgTitleMissing+"\n", errOut)
	assert.Empty(t, srv.titles(t))

	_, _, err = execute(t, "", "--api", srv.URL, "add")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	srv := newAPIServer(t)
	tasks := srv.seed(t, "Keep", "Drop")

	out, errOut, err := execute(t, "", "--api", srv.URL, "delete", tasks[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "✔ "+ui.MsgDeleted+"\n", errOut)
	assert.NotContains(t, out, "Drop")
	assert.Contains(t, out, "1.  Keep")
	assert.Equal(t, []string{"Keep"}, srv.titles(t))

	out, errOut, err = execute(t, "", "--api", srv.URL, "rm", "ghost")
	require.NoError(t, err)
	assert.Equal(t, "✖ "+ui.MsgDeleteGone+"\n", errOut)
	assert.Contains(t, out, "Keep")
}

func TestAPIBaseResolution(t *testing.T) {
	srv := newAPIServer(t)
	srv.seed(t, "From env")

	t.Run("TASKER_API_BASE", func(t *testing.T) {
		t.Setenv("TASKER_API_BASE", srv.URL)
		out, _, err := execute(t, "", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "From env")
	})

	t.Run("API_BASE", func(t *testing.T) {
		t.Setenv("API_BASE", srv.URL)
		out, _, err := execute(t, "", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "From env")
	})

	t.Run("flag wins over env", func(t *testing.T) {
		t.Setenv("TASKER_API_BASE", "http://127.0.0.1:1")
		out, errOut, err := execute(t, "", "--api", srv.URL, "list")
		require.NoError(t, err)
		assert.Contains(t, out, "From env")
		assert.Empty(t, errOut)
	})

	t.Run("invalid base", func(t *testing.T) {
		_, _, err := execute(t, "", "--api", "localhost:4000", "list")
		assert.Error(t, err)
	})
}
