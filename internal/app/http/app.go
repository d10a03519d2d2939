package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/realtimepolls/poll-service/internal/handlers"
	"github.com/realtimepolls/poll-service/internal/routes"
)

type App struct {
	engine *gin.Engine
	server *http.Server
	port   int
}

// NewApp initializes the Gin HTTP server and wires the routes.
func NewApp(
	port int,
	handler *handlers.PollingHandler,
	wsHandler *handlers.WSHandler,
) *App {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		AllowWebSockets: true,
	}))

	api := r.Group("/api")
	{
		routes.RegisterPollRoutes(api, handler)
		routes.RegisterUserRoutes(api, handler)
	}

	// Streaming endpoint for live poll/vote/like updates
	r.GET("/ws", wsHandler.Serve)

	// Healthcheck
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf(":%d", port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	return &App{
		engine: r,
		server: httpServer,
		port:   port,
	}
}

// Run starts the HTTP server.
func (a *App) Run() error {
	fmt.Println("HTTP server is running on", a.server.Addr)
	return a.server.ListenAndServe()
}

// Stop shuts the server down gracefully.
func (a *App) Stop(ctx context.Context) error {
	fmt.Println("HTTP server is stopping...")
	return a.server.Shutdown(ctx)
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}
