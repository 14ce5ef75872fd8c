package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-plagiarism-api/internal/config"
	"github.com/noah-isme/gema-plagiarism-api/internal/handler"
	"github.com/noah-isme/gema-plagiarism-api/internal/middleware"
	"github.com/noah-isme/gema-plagiarism-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler *handler.SubmissionHandler
	PlagiarismHandler *handler.PlagiarismHandler
	HealthProbes      []handler.HealthProbe
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	if deps.SubmissionHandler != nil {
		tutorial := app.Group("/api/v2/tutorial", jwtMiddleware)
		deps.SubmissionHandler.Register(tutorial.Group("/submissions"))
	}

	if deps.PlagiarismHandler != nil {
		plagiarism := app.Group("/api/v2/plagiarism", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin, middleware.RoleTeacher))
		deps.PlagiarismHandler.Register(plagiarism)
	}
}
