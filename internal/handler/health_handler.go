package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/coupon-api/internal/middleware"
)

// Pinger is implemented by every coupon store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a new HealthHandler for the given store.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check pings the coupon store.
// Returns 200 OK with {"status": "healthy"} when the store answers.
// Returns 503 Service Unavailable with {"status": "unhealthy", "error": "..."} otherwise.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.store.Ping(c.UserContext()); err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("health check failed: store unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "store unavailable",
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
