package handlers

import (
	"time"

	"examguard/internal/database"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	mongo *database.MongoDB
}

// NewHealthHandler creates a new health handler. mongo may be nil when the
// service runs on the in-memory store.
func NewHealthHandler(mongo *database.MongoDB) *HealthHandler {
	return &HealthHandler{mongo: mongo}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	storage := "memory"
	if h.mongo != nil {
		storage = "mongodb"
		if err := h.mongo.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    "degraded",
				"storage":   storage,
				"error":     err.Error(),
				"timestamp": time.Now().Format(time.RFC3339),
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":    "healthy",
		"storage":   storage,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
