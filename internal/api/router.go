package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sensor-dashboard/internal/config"
	"sensor-dashboard/internal/logging"
	"sensor-dashboard/internal/monitor"
	"sensor-dashboard/internal/presenter"
)

func NewRouter(monitors *monitor.Registry, store *presenter.Store, ws *WebSocketManager, logger *logging.Logger, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	h := NewHandler(monitors, store, ws, logger)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(cfg.API.BasePath)
	{
		variant := api.Group("/:variant", h.ResolveVariant)

		// Views
		variant.GET("", h.GetView)
		variant.GET("/ws", h.Subscribe)

		// History
		variant.GET("/history", h.GetHistory)
		variant.GET("/history/smoke", h.GetSmokeHistory)
		variant.DELETE("/history", h.ClearHistory)
		variant.DELETE("/history/smoke", h.ClearSmokeHistory)

		// Actions
		variant.POST("/refresh", h.Refresh)
		variant.POST("/banner/dismiss", h.DismissBanner)
	}
	return r
}
