package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/tasker/internal/config"
	"github.com/phrazzld/tasker/internal/platform/logger"
	"github.com/phrazzld/tasker/internal/platform/memory"
	"github.com/phrazzld/tasker/internal/store"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            0,
			LogLevel:        "debug",
			ShutdownTimeout: 5 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: config.DatabaseConfig{
			Driver:         config.DriverMemory,
			Name:           "tasker",
			Collection:     "tasks",
			ConnectTimeout: time.Second,
		},
	}
}

func newTestApp(t *testing.T, s store.TaskStore) (*application, *logger.TestLogBuffer) {
	t.Helper()
	if s == nil {
		s = memory.NewTaskStore(nil)
	}
	logBuf, _ := logger.SetupTestLogger(t)
	app, err := newApplication(testConfig(), slog.Default(), s)
	require.NoError(t, err)
	return app, logBuf
}

// setDefaultLoggerForTest restores slog's default logger after run replaces it.
func setDefaultLoggerForTest(t *testing.T) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}
