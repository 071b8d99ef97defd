package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vendora-labs/partner-backend/internal/handlers"
	"github.com/vendora-labs/partner-backend/internal/middleware"
	"github.com/vendora-labs/partner-backend/internal/services"
	"github.com/vendora-labs/partner-backend/internal/storage"
)

// Deps carries the wired services the routes need
type Deps struct {
	Store         storage.Store
	Tokens        *services.TokenService
	Notifier      *services.Notifier
	LoginLimiter  *services.RateLimiter
	CreateLimiter *services.RateLimiter
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Deps) {
	authService := services.NewAuthService(deps.Store, deps.Tokens, deps.Notifier)
	partnerService := services.NewPartnerService(deps.Store, deps.Notifier)

	authHandler := handlers.NewAuthHandler(authService, deps.LoginLimiter)
	partnerHandler := handlers.NewPartnerHandler(partnerService, deps.CreateLimiter)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	app.Get("/health", healthHandler.Health)

	api := app.Group("/api")
	partners := api.Group("/partners")

	// Open: login only
	partners.Post("/login", authHandler.Login)

	// Partner self-service (partner token)
	partners.Put("/me/password", middleware.RequireAuth(deps.Tokens), partnerHandler.ChangeOwnPassword)

	// Administration (admin token)
	admin := api.Group("/partners", middleware.RequireAuth(deps.Tokens), middleware.RequireAdmin())
	admin.Post("/", partnerHandler.Create)
	admin.Get("/", partnerHandler.List)
	admin.Get("/:id", partnerHandler.Get)
	admin.Put("/:id", partnerHandler.Update)
	admin.Put("/:id/status", partnerHandler.ToggleStatus)
	admin.Post("/:id/unlock", partnerHandler.Unlock)
	admin.Post("/:id/orders/:event", partnerHandler.RecordOrderEvent)
	admin.Delete("/:id", partnerHandler.Delete)
}
