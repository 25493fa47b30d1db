package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tintura-sst/internal/models"
	"tintura-sst/internal/store"
)

type HealthHandler struct {
	store    store.Store
	driver   string
	degraded string
}

// NewHealthHandler reports on st. A non-empty degradedReason means the
// configured store was unreachable at startup and the seeded memory store is
// serving instead.
func NewHealthHandler(st store.Store, driver, degradedReason string) *HealthHandler {
	return &HealthHandler{store: st, driver: driver, degraded: degradedReason}
}

// Health godoc
// @Summary     Health check
// @Description Returns liveness, the active store driver and whether the server runs in degraded mode
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response := models.HealthResponse{
		Status:      "ok",
		StoreDriver: h.driver,
		Degraded:    h.degraded != "",
		Reason:      h.degraded,
		Database:    "ok",
	}
	if err := h.store.Ping(c.Request.Context()); err != nil {
		response.Database = err.Error()
	}
	c.JSON(http.StatusOK, response)
}
