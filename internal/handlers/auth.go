package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vendora-labs/partner-backend/internal/apperrors"
	"github.com/vendora-labs/partner-backend/internal/models"
	"github.com/vendora-labs/partner-backend/internal/services"
)

// AuthHandler handles partner login
type AuthHandler struct {
	auth    *services.AuthService
	limiter *services.RateLimiter
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, limiter *services.RateLimiter) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		limiter: limiter,
	}
}

// Login authenticates a partner and returns a session token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewValidation("invalid request body"))
	}

	if req.PartnerIdentifier == "" || req.Password == "" {
		return respondError(c, apperrors.NewValidation("partner_identifier and password are required"))
	}

	if err := h.limiter.Enforce(c.Context(), req.PartnerIdentifier, c.IP()); err != nil {
		return respondError(c, err)
	}

	result, err := h.auth.Login(req.PartnerIdentifier, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, result, "Login successful")
}
