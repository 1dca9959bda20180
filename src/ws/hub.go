package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one server-pushed message to a connected client
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// client pairs a connection with its write lock. gorilla/websocket allows
// at most one concurrent writer per connection, and pushes for the same
// socket can arrive from different request goroutines.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Hub tracks live websocket connections keyed by socket ID so backend
// components can push session events back to the client that initiated a
// concierge session. A socket ID maps to at most one connection; a
// reconnect with the same ID replaces the old one.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]*client
	upgrader websocket.Upgrader
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the SPA origin; auth happens
			// at the token layer, not the origin check.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades an HTTP request and registers the connection under the
// given socket ID until the peer disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, socketID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: conn}
	h.register(socketID, c)
	slog.Info("WebSocket client connected", "socket_id", socketID)

	go h.readLoop(socketID, c)
	return nil
}

// Push delivers an event to the connection registered under socketID.
// Returns false when no such connection exists or the write fails; the
// caller treats delivery as best effort.
func (h *Hub) Push(socketID string, event Event) bool {
	h.mu.Lock()
	c, ok := h.clients[socketID]
	h.mu.Unlock()
	if !ok {
		return false
	}

	body, err := json.Marshal(event)
	if err != nil {
		return false
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, body)
	c.writeMu.Unlock()
	if err != nil {
		slog.Warn("Failed to push event over websocket",
			"socket_id", socketID,
			"event", event.Type,
			"error", err)
		h.remove(socketID, c)
		return false
	}
	return true
}

// Close tears down every live connection
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for socketID, c := range h.clients {
		c.conn.Close()
		delete(h.clients, socketID)
	}
}

func (h *Hub) register(socketID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[socketID]; ok {
		old.conn.Close()
	}
	h.clients[socketID] = c
}

func (h *Hub) remove(socketID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Only remove if the registered connection is still this one; a
	// reconnect may already have replaced it.
	if current, ok := h.clients[socketID]; ok && current == c {
		c.conn.Close()
		delete(h.clients, socketID)
	}
}

// readLoop drains inbound frames so pings are answered and disconnects
// are noticed; clients do not send application messages over this channel.
func (h *Hub) readLoop(socketID string, c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(socketID, c)
	slog.Info("WebSocket client disconnected", "socket_id", socketID)
}
