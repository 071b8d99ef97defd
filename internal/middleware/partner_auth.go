package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vendora-labs/partner-backend/internal/services"
)

// Keys under which claims are stashed in the request locals
const (
	localClaims      = "session_claims"
	localPartnerCode = "partner_code"
	localRole        = "role"
)

// RequireAuth verifies the Bearer session token and stashes its claims in
// the request locals.
func RequireAuth(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"data":       nil,
				"message":    "missing or malformed authorization header",
				"success":    false,
				"statusCode": fiber.StatusUnauthorized,
			})
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"data":       nil,
				"message":    "invalid or expired token",
				"success":    false,
				"statusCode": fiber.StatusUnauthorized,
			})
		}

		c.Locals(localClaims, claims)
		c.Locals(localPartnerCode, claims.PartnerCode)
		c.Locals(localRole, claims.Role)
		return c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// Admin tokens are issued by the shared admin service with the same secret.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals(localRole).(string); role != services.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"data":       nil,
				"message":    "admin access required",
				"success":    false,
				"statusCode": fiber.StatusForbidden,
			})
		}
		return c.Next()
	}
}

// PartnerCodeFrom returns the partner code of the authenticated caller
func PartnerCodeFrom(c *fiber.Ctx) string {
	code, _ := c.Locals(localPartnerCode).(string)
	return code
}

// ActorFrom identifies the caller for createdBy/updatedBy audit fields
func ActorFrom(c *fiber.Ctx) string {
	if claims, ok := c.Locals(localClaims).(*services.SessionClaims); ok {
		if claims.PartnerCode != "" {
			return claims.PartnerCode
		}
		return claims.Subject
	}
	return "system"
}
