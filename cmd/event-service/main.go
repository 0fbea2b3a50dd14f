package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/worldexplorer/backend/internal/app"
	"github.com/worldexplorer/backend/internal/config"
)

func main() {

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", slog.Any("error", err))
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	app, err := app.New(logger, cfg)
	if err != nil {
		logger.Error("Failed to create event service.", slog.Any("error", err))
		return
	}

	if err := app.Start(ctx); err != nil {
		logger.Error("Failed to start event service.", slog.Any("error", err))
	}

}
