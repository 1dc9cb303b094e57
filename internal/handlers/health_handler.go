package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ats-backend/internal/response"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	version string
}

func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version"`
	Time     string `json:"time"`
}

func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	status := healthStatus{
		Status:   "healthy",
		Database: "up",
		Version:  h.version,
		Time:     time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.db.PingContext(ctx); err != nil {
		status.Status = "unhealthy"
		status.Database = "down"
		return response.Success(c, fiber.StatusServiceUnavailable, "Service unavailable", status)
	}
	return response.Success(c, fiber.StatusOK, "Service is healthy", status)
}
