package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/config"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/logger"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/bootstrap"
)

func main() {
	cfg := config.Load()
	log := logger.New("tracking-service", cfg.Logging.Level, cfg.Logging.FilePath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	go func() { <-quit; cancel() }()

	if err := bootstrap.Run(ctx, cfg, log); err != nil {
		log.Fatal("tracking service failed", "error", err.Error())
	}
}
