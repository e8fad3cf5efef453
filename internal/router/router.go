package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ysxx86/classreport-go-api/internal/config"
	"github.com/ysxx86/classreport-go-api/internal/handler"
	"github.com/ysxx86/classreport-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ExportHandler   *handler.ExportHandler
	ProgressHandler *handler.ProgressHandler
	TemplateHandler *handler.TemplateHandler
	RosterHandler   *handler.RosterHandler
	SeedHandler     *handler.SeedHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.ExportHandler != nil {
		exports := api.Group("/exports")
		deps.ExportHandler.Register(exports)

		if deps.ProgressHandler != nil {
			deps.ProgressHandler.Register(exports)
		}
	}

	if deps.TemplateHandler != nil {
		deps.TemplateHandler.Register(api.Group("/templates"))
	}

	if deps.RosterHandler != nil {
		deps.RosterHandler.Register(api.Group("/students"))
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}
}
