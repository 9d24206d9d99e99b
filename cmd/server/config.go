package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasker/internal/config"
)

// loadAppConfig loads the application configuration from environment variables or config file.
// Returns the loaded config and any loading error.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)

	if cfg.Database.URI != "" {
		slog.Debug("Database configuration", "uri_present", true)
	}

	return cfg, nil
}
