package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles the liveness probe.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthCheck is a constant-response liveness probe. It deliberately does
// not touch the catalog cache or any upstream.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
