package websocket

import (
	"context"
	"net/http"

	devreload_errors "devreload/pkg/errors"
	"devreload/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *Logger
}

func NewHandler(hub *Hub, logger *Logger) *Handler {
	if logger == nil {
		logger = NewLogger(nil)
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			// dev server: pages may be served from any local origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Connect upgrades GET /hot-reload and holds the connection until the peer
// leaves or the hub shuts down.
func (h *Handler) Connect(c *gin.Context) {
	if h.hub.Closed() {
		_ = c.Error(devreload_errors.ErrHubClosed)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade", "", err, zap.String("remote_addr", c.ClientIP()))
		return
	}

	client := NewClient(conn)
	// request logging runs after Connect returns and picks the id up from here
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.ClientIdKey, client.ID))

	// the hub can still shut down between the check above and here
	if !h.hub.Register(client) {
		h.logger.Warn("hub_closed", client.ID)
		client.writeClose()
		client.close()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.WriteLoop(ctx)

	if err := client.ReadLoop(); err != nil && websocket.IsUnexpectedCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived) {
		h.logger.Warn("read", client.ID, zap.Error(err))
	}

	h.hub.Unregister(client)
}
