// Package main implements the entry point for the tasker API server, which
// exposes create, list and delete operations over tasks kept in the
// configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// main loads configuration, sets up logging, opens the task store, and
// serves HTTP until SIGINT or SIGTERM.
func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: ./config.yaml if present)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Printf("tasker server: %v", err)
		stop()
		os.Exit(1)
	}
}

// run is the testable body of main. It returns once ctx is canceled and the
// server has shut down, or as soon as startup fails.
func run(ctx context.Context, configPath string) error {
	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	openCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	taskStore, err := openTaskStore(openCtx, cfg.Database, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to open task store: %w", err)
	}

	app, err := newApplication(cfg, logger, taskStore)
	if err != nil {
		closeTaskStore(context.Background(), taskStore, logger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}
