package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/realtimepolls/poll-service/internal/ws"
	"github.com/realtimepolls/poll-service/utils"
)

type WSHandler struct {
	log      *slog.Logger
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(log *slog.Logger, hub *ws.Hub) *WSHandler {
	return &WSHandler{
		log: log,
		hub: hub,
		upgrader: websocket.Upgrader{
			// The frontend dev server runs on another origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the connection and registers it with the hub. The
// connection then idles: inbound messages are ignored, all traffic is
// broadcast envelopes. Late joiners never see past events.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", utils.Err(err))
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
