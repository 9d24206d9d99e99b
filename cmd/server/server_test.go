package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/phrazzld/tasker/internal/platform/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closeTrackingStore records whether the application released it.
type closeTrackingStore struct {
	*memory.TaskStore
	closed chan struct{}
}

func (s *closeTrackingStore) Close(context.Context) error {
	close(s.closed)
	return nil
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := &closeTrackingStore{TaskStore: memory.NewTaskStore(nil), closed: make(chan struct{})}
	app, logBuf := newTestApp(t, s)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln, app.setupRouter()) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	select {
	case <-s.closed:
	default:
		t.Fatal("task store was not closed")
	}
	assert.Contains(t, logBuf.String(), "Server shutdown completed")
}

func TestStartHTTPServerPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	s := &closeTrackingStore{TaskStore: memory.NewTaskStore(nil), closed: make(chan struct{})}
	app, _ := newTestApp(t, s)
	app.config.Server.Port = ln.Addr().(*net.TCPAddr).Port

	err = app.startHTTPServer(context.Background(), app.setupRouter())
	assert.Error(t, err)

	select {
	case <-s.closed:
	default:
		t.Fatal("task store was not closed after listen failure")
	}
}
