package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/vendora-labs/partner-backend/database"
	"github.com/vendora-labs/partner-backend/internal/jobs"
	"github.com/vendora-labs/partner-backend/internal/models"
	"github.com/vendora-labs/partner-backend/internal/routes"
	"github.com/vendora-labs/partner-backend/internal/services"
	"github.com/vendora-labs/partner-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found - using environment variables")
		}
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("Running database migrations...")
		if err := database.DB.AutoMigrate(&models.Partner{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("Database migrations completed")

		store = storage.NewDatabaseStore(database.DB)
	}
	storage.SetStore(store)

	// Session tokens
	tokens, err := services.NewTokenService()
	if err != nil {
		log.Fatal("Failed to initialize token service:", err)
	}

	// SMS notifier is optional
	notifier, err := services.NewNotifier()
	if err != nil {
		log.Println("SMS notifications disabled:", err)
		notifier = nil
	}

	// Rate limiters are optional, enabled when Redis is configured
	var loginLimiter, createLimiter *services.RateLimiter
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		loginLimiter = services.NewRateLimiter(redisClient, "login", 20, 5*time.Minute)
		createLimiter = services.NewRateLimiter(redisClient, "create", 5, time.Hour)
		log.Println("Rate limiting enabled via Redis at " + addr)
	}

	// Background sweep of elapsed lockouts
	lockoutMonitor := jobs.NewLockoutMonitor(store, 15*time.Minute)
	lockoutMonitor.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Partner Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"data":       nil,
				"message":    err.Error(),
				"success":    false,
				"statusCode": code,
			})
		},
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Root endpoint with service status
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service": "Partner Backend API",
			"version": "1.0.0",
			"status":  "healthy",
			"storage": getStorageType(),
		}

		if count, err := store.PartnerCount(); err == nil {
			response["partners"] = count
		}

		return c.JSON(response)
	})

	routes.SetupRoutes(app, routes.Deps{
		Store:         store,
		Tokens:        tokens,
		Notifier:      notifier,
		LoginLimiter:  loginLimiter,
		CreateLimiter: createLimiter,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		lockoutMonitor.Stop()
		_ = app.Shutdown()
	}()

	log.Printf("Partner Backend starting on port %s (storage: %s)", port, getStorageType())
	log.Fatal(app.Listen(":" + port))
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
