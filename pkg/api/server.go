// Package api exposes the scheduling engine over HTTP.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rotaplan/rotaplan/internal/config"
	"github.com/rotaplan/rotaplan/pkg/db"
	"github.com/rotaplan/rotaplan/pkg/metrics"
)

// NewServer wires all HTTP routes onto a fresh echo instance.
func NewServer(store db.Database, cfg *config.Config, logger *zap.Logger, sink *metrics.Sink) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	h := NewHandler(store, cfg, logger, sink)

	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")
	v1.POST("/schedule/generate", h.Generate)
	v1.GET("/schedule/:year/:month", h.MonthView)
	v1.POST("/assignments/:id/confirm", h.Confirm)
	v1.POST("/assignments/:id/decline", h.Decline)
	v1.POST("/assignments/:id/swap", h.Swap)
	v1.GET("/reminders", h.Reminders)

	return e
}

// Health reports liveness for load balancers and probes.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
