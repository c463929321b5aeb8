// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"devreload/internal/assets"
	"devreload/internal/transport/httpdto"
	devreload_errors "devreload/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Hub is the part of the websocket hub the handlers need.
type Hub interface {
	Reload() int
	GetClientCount() int
}

// ReloadHandler handles the dev server's HTTP endpoints.
type ReloadHandler struct {
	hub          Hub
	staticDir    string
	redisEnabled bool
}

// NewReloadHandler creates a reload handler.
func NewReloadHandler(hub Hub, staticDir string, redisEnabled bool) *ReloadHandler {
	return &ReloadHandler{hub: hub, staticDir: staticDir, redisEnabled: redisEnabled}
}

// Trigger broadcasts a reload to every connected page. The JSON body is
// optional.
func (h *ReloadHandler) Trigger(c *gin.Context) {
	var req httpdto.ReloadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(fmt.Errorf("reload request: %w", devreload_errors.ErrInvalidInput))
			return
		}
	}

	sent := h.hub.Reload()
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ReloadResponse{
		Clients:     sent,
		Source:      req.Source,
		TriggeredAt: time.Now().UTC(),
	}))
}

// Health reports how many pages are listening.
func (h *ReloadHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.HealthResponse{
		Status:  "healthy",
		Clients: h.hub.GetClientCount(),
		Redis:   h.redisEnabled,
	}))
}

// Docs serves docs.html from the static directory, or the built-in page.
func (h *ReloadHandler) Docs(c *gin.Context) {
	path := filepath.Join(h.staticDir, "docs.html")
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		c.File(path)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", assets.DocsHTML)
}
