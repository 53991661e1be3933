package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp creates the fiber app with middleware and routes
func NewApp(handler *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "SP Dashboard v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	SetupRoutes(app, handler)
	return app
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	// Dashboard page
	app.Get("/", handler.Dashboard)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Get("/locations", handler.GetLocations)
		api.Post("/utilization", handler.GetUtilization)

		// Per-session selection lifecycle
		api.Post("/selection", handler.Select)
		api.Get("/selection", handler.GetSelection)
		api.Delete("/selection", handler.LeaveSelection)
		api.Get("/selection/chart.svg", handler.GetSelectionChart)

		api.Get("/fetch-logs", handler.GetFetchLogs)
	}
}

// ErrorHandler renders errors as JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
