package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/vendora-labs/partner-backend/internal/apperrors"
)

// respond writes the uniform response envelope used by every endpoint
func respond(c *fiber.Ctx, status int, data interface{}, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"data":       data,
		"message":    message,
		"success":    status < 400,
		"statusCode": status,
	})
}

// respondError maps a domain error to its HTTP status. Internal errors are
// logged and replaced with a generic message.
func respondError(c *fiber.Ctx, err error) error {
	status := apperrors.StatusCode(err)
	message := err.Error()
	if status == 500 {
		log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
		message = "internal server error"
	}
	return respond(c, status, nil, message)
}
