package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Evgen-Mutagen/qr-wallet/internal/app"
	"github.com/Evgen-Mutagen/qr-wallet/internal/util/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := app.NewConfigFromFlags()

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}

	err := run(cfg)
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *app.Config) error {
	if cfg.UsesDefaultSecret() {
		logger.Log.Warn("Using the default JWT secret, set JWT_SECRET_KEY in production")
	}

	application, err := app.NewFromConfig(cfg, logger.Log)
	if err != nil {
		logger.Log.Error("Initialization failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Log.Error("Failed to close resources", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	return nil
}
