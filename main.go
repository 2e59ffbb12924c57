package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/PadelPad/UnitedPadelApp-sub000/app"
	"github.com/PadelPad/UnitedPadelApp-sub000/config"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/tracing"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Observability.Environment == "development" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("env", cfg.Observability.Environment))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: "padel-rating",
		Environment: cfg.Observability.Environment,
		Endpoint:    cfg.Observability.OTLPEndpoint,
		Insecure:    cfg.Observability.OTLPInsecure,
		SampleRate:  cfg.Observability.TraceSampleRate,
	})
	if err != nil {
		logger.Error("Failed to set up tracing", slog.Any("error", err))
		os.Exit(1)
	}

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize app", slog.Any("error", err))
		os.Exit(1)
	}

	runErr := application.Run(ctx)
	if runErr != nil {
		logger.Error("Application stopped with error", slog.Any("error", runErr))
	} else {
		logger.Info("Shutdown signal received")
	}

	if err := application.Close(); err != nil {
		logger.Error("Error during shutdown", slog.Any("error", err))
	}
	if err := shutdownTracing(context.Background()); err != nil {
		logger.Error("Error flushing traces", slog.Any("error", err))
	}

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("Application shut down gracefully")
}
