package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aoisorajuku/seiseki-api/internal/config"
	"github.com/aoisorajuku/seiseki-api/internal/handler"
	"github.com/aoisorajuku/seiseki-api/internal/middleware"
	"github.com/aoisorajuku/seiseki-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ImportHandler    *handler.ImportHandler
	DashboardHandler *handler.DashboardHandler
	StudentHandler   *handler.StudentHandler
	GradeHandler     *handler.GradeHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Uploads mutate the whole record store, so they sit behind the admin
	// role and a per-user rate limit.
	if deps.ImportHandler != nil {
		imports := api.Group("/imports", jwtMiddleware,
			middleware.RequireRole("admin"),
			middleware.RateLimit("imports", 10, time.Minute))
		deps.ImportHandler.Register(imports)
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students", jwtMiddleware)
		deps.StudentHandler.Register(students)
	}

	if deps.GradeHandler != nil {
		grades := api.Group("/grades", jwtMiddleware, middleware.RequireRole("admin"))
		deps.GradeHandler.Register(grades)
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("", jwtMiddleware)
		deps.DashboardHandler.Register(dashboard)
	}
}
