package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the banner and the probe endpoints.
type HealthHandler struct {
	store   Pinger
	started time.Time
	version string
}

func NewHealthHandler(store Pinger, version string) *HealthHandler {
	return &HealthHandler{
		store:   store,
		started: time.Now(),
		version: version,
	}
}

// ReadinessResponse is the /readyz body.
type ReadinessResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Error     string `json:"error,omitempty"`
}

func (h *HealthHandler) probe(c *gin.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()
	return h.store.Ping(ctx)
}

// Root is the service banner. It answers 200 even when the store is down.
func (h *HealthHandler) Root(c *gin.Context) {
	database := "connected"
	if err := h.probe(c, 3*time.Second); err != nil {
		database = "unavailable"
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Task Manager API",
		"status":   "running",
		"database": database,
	})
}

// Liveness never touches the store.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	res := ReadinessResponse{
		Status:    "ready",
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Database:  "connected",
	}

	code := http.StatusOK
	if err := h.probe(c, 5*time.Second); err != nil {
		res.Status = "not_ready"
		res.Database = "unavailable"
		res.Error = err.Error()
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, res)
}

func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.probe(c, 3*time.Second); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}
