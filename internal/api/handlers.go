package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"sensor-dashboard/internal/history"
	"sensor-dashboard/internal/logging"
	"sensor-dashboard/internal/models"
	"sensor-dashboard/internal/monitor"
	"sensor-dashboard/internal/presenter"
)

const monitorKey = "monitor"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Handler struct {
	monitors *monitor.Registry
	store    *presenter.Store
	ws       *WebSocketManager
	logger   *logging.Logger
}

func NewHandler(monitors *monitor.Registry, store *presenter.Store, ws *WebSocketManager, logger *logging.Logger) *Handler {
	return &Handler{monitors: monitors, store: store, ws: ws, logger: logger}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "variants": h.monitors.Variants()})
}

// ResolveVariant loads the monitor named by the :variant parameter.
func (h *Handler) ResolveVariant(c *gin.Context) {
	variant := c.Param("variant")
	m, err := h.monitors.Get(variant)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Unknown variant"})
		return
	}
	c.Set(monitorKey, m)
	c.Next()
}

func (h *Handler) monitor(c *gin.Context) *monitor.Monitor {
	return c.MustGet(monitorKey).(*monitor.Monitor)
}

// latest falls back to a connecting update before the monitor has published.
func (h *Handler) latest(variant string) models.Update {
	if u, ok := h.store.Latest(variant); ok {
		return u
	}
	return models.Update{Variant: variant, Status: models.StatusConnecting}
}

func (h *Handler) GetView(c *gin.Context) {
	variant := h.monitor(c).Variant()
	c.JSON(http.StatusOK, presenter.Shape(h.latest(variant)))
}

func (h *Handler) GetHistory(c *gin.Context) {
	u := h.latest(h.monitor(c).Variant())
	entries := u.History
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) GetSmokeHistory(c *gin.Context) {
	u := h.latest(h.monitor(c).Variant())
	entries := u.SmokeHistory
	if entries == nil {
		entries = []models.SmokeEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) ClearHistory(c *gin.Context) {
	m := h.monitor(c)
	h.respondClear(c, m.Variant(), "sensor", m.ClearHistory(c.Query("confirm") == "true"))
}

func (h *Handler) ClearSmokeHistory(c *gin.Context) {
	m := h.monitor(c)
	h.respondClear(c, m.Variant(), "smoke", m.ClearSmokeHistory(c.Query("confirm") == "true"))
}

func (h *Handler) respondClear(c *gin.Context, variant, kind string, err error) {
	if errors.Is(err, history.ErrConfirmationRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Clearing history requires confirm=true"})
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to clear %s history for %s: %v", kind, variant, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history"})
		return
	}
	h.logger.Infof("Cleared %s history for %s", kind, variant)
	c.JSON(http.StatusAccepted, gin.H{"status": "cleared"})
}

func (h *Handler) Refresh(c *gin.Context) {
	h.monitor(c).Refresh()
	c.JSON(http.StatusAccepted, gin.H{"status": "refreshing"})
}

func (h *Handler) DismissBanner(c *gin.Context) {
	h.monitor(c).DismissBanner()
	c.JSON(http.StatusAccepted, gin.H{"status": "dismissed"})
}

// Subscribe upgrades to a websocket that receives the view on every update.
func (h *Handler) Subscribe(c *gin.Context) {
	variant := h.monitor(c).Variant()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed for %s: %v", variant, err)
		return
	}
	if !h.ws.AddConnection(variant, conn, presenter.Shape(h.latest(variant))) {
		conn.Close()
		return
	}
	go h.ws.ReadUntilClosed(variant, conn)
}
