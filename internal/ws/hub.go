// Package ws holds the connection registry and broadcast hub: the set of
// live websocket subscribers and the best-effort fan-out that keeps them
// synchronized with poll, vote and like state changes.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/realtimepolls/poll-service/internal/entity"
	"github.com/realtimepolls/poll-service/internal/metrics"
	"github.com/realtimepolls/poll-service/utils"
)

// envelope is the wire shape of every server-to-client message.
type envelope struct {
	Type   string `json:"type"`
	PollID int64  `json:"poll_id"`
	Data   any    `json:"data"`
}

// Hub owns the live subscriber set. All mutation happens under the mutex,
// including removal of failing clients in the middle of a broadcast pass,
// so registration and fan-out can run from any goroutine.
type Hub struct {
	log     *slog.Logger
	metrics *metrics.HubMetrics

	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewHub(log *slog.Logger, m *metrics.HubMetrics) *Hub {
	return &Hub{
		log:     log,
		metrics: m,
		clients: make(map[*Client]struct{}),
	}
}

// Register adds a connection to the live set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	h.metrics.ActiveConnections.Inc()
	h.log.Debug("client registered", slog.String("client_id", c.id), slog.Int("clients", len(h.clients)))
}

// Unregister removes a connection and closes its send channel. It is
// idempotent: removing an absent client is a no-op, and the channel is
// closed exactly once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(c)
}

// Broadcast serializes the event once and attempts delivery to every
// registered client independently. A client that cannot accept the
// message (dead socket, stalled writer) is unregistered during the same
// pass; the remaining clients still receive the event. Failures never
// reach the caller.
func (h *Hub) Broadcast(ev entity.Event) {
	data, err := json.Marshal(envelope{
		Type:   string(ev.Type),
		PollID: ev.PollID,
		Data:   ev.Data,
	})
	if err != nil {
		h.log.Error("failed to marshal event", slog.String("type", string(ev.Type)), utils.Err(err))
		return
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.remove(c)
			h.metrics.DroppedSends.Inc()
			h.log.Debug("client dropped during broadcast", slog.String("client_id", c.id))
		}
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.metrics.EventsBroadcast.WithLabelValues(string(ev.Type)).Inc()
	h.log.Debug("event broadcast",
		slog.String("type", string(ev.Type)),
		slog.Int64("poll_id", ev.PollID),
		slog.Int("clients", n),
	)
}

// Close tears the registry down at shutdown, releasing every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.remove(c)
	}
}

// Len reports the current number of registered clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// remove must be called with the mutex held.
func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.ActiveConnections.Dec()
}
