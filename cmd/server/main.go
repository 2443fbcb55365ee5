package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ibcoder/portfolio/internal/app"
	"github.com/ibcoder/portfolio/internal/config"
	"github.com/ibcoder/portfolio/internal/logging"
)

func main() {
	cfg := config.New()
	logger := logging.New() // Initialize the structured logger
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	a := app.New(cfg, logger)
	srv, err := a.Server(ctx)
	if err != nil {
		slog.Error("Failed to build server", "error", err)
		_ = a.Close()
		os.Exit(1)
	}

	if err := srv.Start(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
