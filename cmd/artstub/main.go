package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tjfontaine/ghibli-studio/internal/pkg/config"
	"github.com/tjfontaine/ghibli-studio/internal/stubservice"
	"github.com/tjfontaine/ghibli-studio/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	shutdown, err := telemetry.InitTracer("ghibli-artstub", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	srv := stubservice.New(stubservice.Options{
		Port:       cfg.Stub.Port,
		FailStatus: cfg.Stub.FailStatus,
		FailBody:   cfg.Stub.FailBody,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Error("stub service stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("stub service shutdown complete")
}
