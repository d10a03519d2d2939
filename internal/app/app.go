package app

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	httpapp "github.com/realtimepolls/poll-service/internal/app/http"
	"github.com/realtimepolls/poll-service/internal/handlers"
	"github.com/realtimepolls/poll-service/internal/metrics"
	"github.com/realtimepolls/poll-service/internal/repo/postgres"
	"github.com/realtimepolls/poll-service/internal/services"
	"github.com/realtimepolls/poll-service/internal/ws"
)

type App struct {
	HTTPServer *httpapp.App
	Polling    *services.Polling
	Hub        *ws.Hub
	storage    *postgres.Storage
}

func NewApp(log *slog.Logger, httpPort int, storagePath string) *App {
	storage, err := postgres.New(storagePath)
	if err != nil {
		panic(err)
	}

	// The hub is created here and torn down in Stop; both the streaming
	// endpoint and the event dispatch share this one instance.
	hub := ws.NewHub(log, metrics.NewHubMetrics(prometheus.DefaultRegisterer))

	pollingService := services.NewPolling(log, storage, storage, storage)
	pollingHandler := handlers.NewPollingHandler(log, pollingService, hub)
	wsHandler := handlers.NewWSHandler(log, hub)

	httpApp := httpapp.NewApp(httpPort, pollingHandler, wsHandler)

	return &App{
		HTTPServer: httpApp,
		Polling:    pollingService,
		Hub:        hub,
		storage:    storage,
	}
}

func (a *App) Stop(ctx context.Context) error {
	if err := a.HTTPServer.Stop(ctx); err != nil {
		return err
	}
	a.Hub.Close()
	return a.storage.Close()
}
