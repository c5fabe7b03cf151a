// v2
// cmd/smarthomed/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/joho/godotenv"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/app"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/config"
)

func main() {
	bootstrap := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		bootstrap.Warn("dotenv_load_failed", slog.Any("err", err))
	}

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("config_load_failed", slog.Any("err", err))
		os.Exit(1)
	}

	application, err := app.New(cfg)
	if err != nil {
		bootstrap.Error("app_init_failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if cerr := application.Close(); cerr != nil {
			bootstrap.Error("app_close_failed", slog.Any("err", cerr))
		}
	}()

	logger := application.Logger()
	logger.Info("service_boot",
		slog.String("listen_address", cfg.ListenAddress),
		slog.String("log_path", cfg.LogFilePath),
		slog.String("properties_path", cfg.PropertiesPath),
		slog.String("devices_path", cfg.DevicesPath),
		slog.String("sample_interval", cfg.SampleInterval.String()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("service_terminated", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("service_stopped")
}
