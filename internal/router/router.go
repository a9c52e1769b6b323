package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/praxis-lms/praxis-go-api/internal/config"
	"github.com/praxis-lms/praxis-go-api/internal/handler"
	"github.com/praxis-lms/praxis-go-api/internal/middleware"
	"github.com/praxis-lms/praxis-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ExecutionHandler  *handler.ExecutionHandler
	ProblemHandler    *handler.ProblemHandler
	TestHandler       *handler.TestHandler
	SubmissionHandler *handler.SubmissionHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Sandbox runs are the most expensive thing the API does, so every
	// route that can start one sits behind a per-user rate limit.
	executeLimit := middleware.RateLimit("execute", cfg.ExecuteRateLimit, time.Minute)
	submitLimit := middleware.RateLimit("submit", cfg.SubmitRateLimit, time.Minute)

	if deps.ExecutionHandler != nil {
		deps.ExecutionHandler.RegisterPublic(api)

		execution := app.Group("/api/v1", jwtMiddleware, executeLimit)
		deps.ExecutionHandler.Register(execution)
	}

	// Catalog authoring is restricted to teaching staff.
	authoring := middleware.RequireRole("teacher", "admin")

	if deps.ProblemHandler != nil {
		problems := app.Group("/api/v1/problems", jwtMiddleware, submitLimit)
		deps.ProblemHandler.Register(problems)
		deps.ProblemHandler.RegisterAuthoring(app.Group("/api/v1/problems", jwtMiddleware, authoring))
	}

	if deps.TestHandler != nil {
		tests := app.Group("/api/v1/tests", jwtMiddleware, submitLimit)
		deps.TestHandler.Register(tests)
		deps.TestHandler.RegisterAuthoring(app.Group("/api/v1/tests", jwtMiddleware, authoring))
	}

	if deps.SubmissionHandler != nil {
		submissions := app.Group("/api/v1", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}
}
