package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/realtimepolls/poll-service/internal/app"
	"github.com/realtimepolls/poll-service/internal/config"
	"github.com/realtimepolls/poll-service/utils"
)

func main() {
	cfg := config.Load("config/local.yaml")

	logger := utils.New(cfg.Env)

	application := app.NewApp(logger, cfg.HTTP.Port, cfg.StoragePath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := application.HTTPServer.Run(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Println("HTTP server closed gracefully")
			} else {
				log.Fatal("failed to run HTTP server", slog.String("error", err.Error()))
			}
		}
	}()

	logger.Info("poll service started", slog.String("env", cfg.Env), slog.Int("port", cfg.HTTP.Port))

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := application.Stop(shutdownCtx); err != nil {
		log.Fatal("failed to stop application", slog.String("error", err.Error()))
	}
}
