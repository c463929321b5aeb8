package websocket

import (
	"context"
	"sync"

	"devreload/internal/reload"

	"go.uber.org/zap"
)

// Hub manages connected reload listeners and fans out broadcasts
type Hub struct {
	mu sync.RWMutex

	// clients maps client ID to client
	clients map[string]*Client

	// closed is set once Run returns; later registrations are refused
	closed bool

	logger *Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *Logger) *Hub {
	if logger == nil {
		logger = NewLogger(nil)
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Run blocks until ctx ends, then closes every client, which sends each
// listener down its delayed-reload path.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a new client to the hub. It reports false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client.ID] = client
	h.logger.Info("connected", client.ID, zap.String("remote_addr", client.RemoteAddr))
	return true
}

// Unregister removes a client and closes its send channel
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
	h.logger.Info("disconnected", client.ID)
}

// Broadcast sends a text message to every connected client and returns how
// many clients it was queued for
func (h *Hub) Broadcast(payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, c := range h.clients {
		if c.SendMessage(payload) {
			sent++
			continue
		}
		h.logger.Warn("send_dropped", c.ID)
	}
	return sent
}

// Reload tells every connected page to reload
func (h *Hub) Reload() int {
	sent := h.Broadcast([]byte(reload.Message))
	h.logger.logger.Info("reload broadcast", zap.Int("clients", sent))
	return sent
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Closed reports whether Run has shut the hub down.
func (h *Hub) Closed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

// closeAll drops every client and refuses new ones (internal)
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.Send)
	}
}
