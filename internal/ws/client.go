package ws

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// sendBufferSize bounds how far a slow subscriber may fall behind before
// a broadcast pass drops it.
const sendBufferSize = 32

// Conn is the subset of *websocket.Conn the client needs; tests
// substitute their own implementations.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Client pairs one subscriber connection with its outbound queue.
// Lifecycle: upgrade -> Register -> (read error | write error | hub
// shutdown) -> Unregister. A reconnecting client is a brand-new Client
// with no knowledge of missed events.
type Client struct {
	id   string
	hub  *Hub
	conn Conn
	send chan []byte
}

func NewClient(hub *Hub, conn Conn) *Client {
	return &Client{
		id:   uuid.New().String(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// WritePump drains the send channel onto the socket. It exits when the
// hub closes the channel or a write fails; either way the client ends up
// unregistered and the socket closed.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.hub.Unregister(c)
			return
		}
	}
}

// ReadPump discards inbound frames; clients only listen. Its real job is
// noticing the peer went away and unregistering.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
