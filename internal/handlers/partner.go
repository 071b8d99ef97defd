package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vendora-labs/partner-backend/internal/apperrors"
	"github.com/vendora-labs/partner-backend/internal/middleware"
	"github.com/vendora-labs/partner-backend/internal/models"
	"github.com/vendora-labs/partner-backend/internal/services"
)

// PartnerHandler handles partner lifecycle requests
type PartnerHandler struct {
	partners *services.PartnerService
	limiter  *services.RateLimiter
}

// NewPartnerHandler creates a new partner handler
func NewPartnerHandler(partners *services.PartnerService, limiter *services.RateLimiter) *PartnerHandler {
	return &PartnerHandler{
		partners: partners,
		limiter:  limiter,
	}
}

// Create registers a new partner account
func (h *PartnerHandler) Create(c *fiber.Ctx) error {
	var reg models.PartnerRegistration
	if err := c.BodyParser(&reg); err != nil {
		return respondError(c, apperrors.NewValidation("invalid request body"))
	}

	if err := h.limiter.Enforce(c.Context(), reg.Email, c.IP()); err != nil {
		return respondError(c, err)
	}

	partner, err := h.partners.Create(&reg, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusCreated, partner, "Partner created successfully")
}

// Get retrieves a partner by internal ID or partner code
func (h *PartnerHandler) Get(c *fiber.Ctx) error {
	partner, err := h.partners.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, partner, "")
}

// List returns all live partners, optionally filtered by ?status=
func (h *PartnerHandler) List(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && status != models.StatusActive && status != models.StatusBlocked && status != models.StatusPending {
		return respondError(c, apperrors.NewValidation("status must be active, blocked or pending"))
	}

	partners, err := h.partners.List(status)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"partners": partners,
		"count":    len(partners),
	}, "")
}

// Update modifies mutable partner profile fields
func (h *PartnerHandler) Update(c *fiber.Ctx) error {
	var upd models.PartnerUpdate
	if err := c.BodyParser(&upd); err != nil {
		return respondError(c, apperrors.NewValidation("invalid request body"))
	}

	partner, err := h.partners.Update(c.Params("id"), &upd, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, partner, "Partner updated successfully")
}

// ToggleStatus blocks or unblocks a partner account
func (h *PartnerHandler) ToggleStatus(c *fiber.Ctx) error {
	var req models.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewValidation("invalid request body"))
	}

	partner, err := h.partners.ToggleStatus(c.Params("id"), req.Action, req.Reason, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, partner, "Partner "+req.Action+"ed successfully")
}

// Unlock clears a partner's lockout state
func (h *PartnerHandler) Unlock(c *fiber.Ctx) error {
	partner, err := h.partners.Unlock(c.Params("id"), middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, partner, "Partner unlocked successfully")
}

// Delete soft-deletes a partner account
func (h *PartnerHandler) Delete(c *fiber.Ctx) error {
	if err := h.partners.Delete(c.Params("id"), middleware.ActorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Partner deleted successfully")
}

// RecordOrderEvent bumps one order-statistic counter for the partner
func (h *PartnerHandler) RecordOrderEvent(c *fiber.Ctx) error {
	partner, err := h.partners.RecordOrderEvent(c.Params("id"), c.Params("event"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, partner, "Order event recorded")
}

// ChangeOwnPassword changes the password of the authenticated partner
func (h *PartnerHandler) ChangeOwnPassword(c *fiber.Ctx) error {
	partnerCode := middleware.PartnerCodeFrom(c)
	if partnerCode == "" {
		return respondError(c, apperrors.ErrInvalidCredentials)
	}

	var req models.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewValidation("invalid request body"))
	}

	if err := h.partners.ChangePassword(partnerCode, &req); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Password changed successfully")
}
