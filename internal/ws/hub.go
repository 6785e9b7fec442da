package ws

import (
	"sync"

	"messaging-service/internal/models"
)

// Sender delivers an event to a single connection by id.
type Sender interface {
	Send(connID string, event models.ServerEvent) bool
}

// Hub maintains the table of live websocket connections, keyed by
// connection id. The presence registry maps users to connection ids; the
// hub resolves those ids to sockets.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Add registers a connection.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID()] = c
}

// Remove drops a connection from the table.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.clients[c.ID()]; ok && current == c {
		delete(h.clients, c.ID())
	}
}

// Send queues an event on the connection, if it is still registered.
func (h *Hub) Send(connID string, event models.ServerEvent) bool {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return client.Send(event)
}

// Len reports the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
