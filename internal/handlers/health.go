package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vendora-labs/partner-backend/internal/storage"
)

// HealthHandler reports service and storage health
type HealthHandler struct {
	store storage.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store storage.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health is the monitoring endpoint: 200 when storage answers, 503 otherwise
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "healthy"
	statusCode := fiber.StatusOK

	count, err := h.store.PartnerCount()
	if err != nil {
		status = "unhealthy"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status": status,
		"services": fiber.Map{
			"storage":  err == nil,
			"partners": count,
		},
	})
}
