// Package main implements the entry point for the lexibird API server,
// which tracks per-keyword spaced repetition state, assembles picture-choice
// review sessions, and runs the rescue-mode difficulty controller.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/lexibird/lexibird-api/internal/config"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
)

// main is the entry point for the lexibird-api server. It loads
// configuration, sets up logging, builds the application dependency graph,
// and runs the HTTP server until a shutdown signal arrives.
func main() {
	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app, err := newApplication(context.Background(), cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up structured logging.
// Returns the loaded config, the configured logger, and any error.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)

	return cfg, appLogger, nil
}
