package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/cricket-tournament-service/pkg/response"
)

// readinessTimeout bounds a storage ping so a stuck pool cannot hang the probe.
const readinessTimeout = 2 * time.Second

// Pinger is the readiness check the health handler needs from storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness and readiness endpoints.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler wires a health handler with its only dependency: something that can Ping.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Liveness responds OK if the process is up; it doesn't check dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	response.WriteData(c, http.StatusOK, "alive", gin.H{"status": "alive"})
}

// Readiness verifies the storage backend answers a ping.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, response.Envelope{
			Success: false,
			Message: "storage unavailable",
			Data:    gin.H{"status": "unavailable"},
		})
		return
	}
	response.WriteData(c, http.StatusOK, "ready", gin.H{"status": "ready"})
}
