package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/danieliancu/AICodeMaster/internal/config"
	"github.com/danieliancu/AICodeMaster/internal/handler"
	"github.com/danieliancu/AICodeMaster/internal/middleware"
	"github.com/danieliancu/AICodeMaster/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DB               *gorm.DB
	AuthHandler      *handler.AuthHandler
	SettingsHandler  *handler.SettingsHandler
	WorkspaceHandler *handler.WorkspaceHandler
	TutorHandler     *handler.TutorHandler
	RealtimeHandler  *handler.RealtimeHandler
	SeedHandler      *handler.SeedHandler
	AuthMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))
	api.Get("/metrics", observability.MetricsHandler())

	authMiddleware := deps.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.RegisterPublic(auth)
		deps.AuthHandler.RegisterProtected(auth, authMiddleware)
	}

	if deps.SettingsHandler != nil {
		settings := api.Group("/settings", authMiddleware)
		deps.SettingsHandler.Register(settings)
	}

	if deps.WorkspaceHandler != nil {
		workspace := api.Group("/workspace", authMiddleware)
		deps.WorkspaceHandler.Register(workspace)
	}

	if deps.TutorHandler != nil {
		// Model calls are expensive; cap the request rate per learner.
		tutorGroup := api.Group("/tutor", authMiddleware, middleware.RateLimit("tutor", 30, time.Minute))
		deps.TutorHandler.Register(tutorGroup)
	}

	if deps.RealtimeHandler != nil {
		realtime := api.Group("/realtime", authMiddleware)
		deps.RealtimeHandler.Register(realtime)
	}

	if deps.SeedHandler != nil {
		// Token-gated, not session-gated: seeding runs before any account
		// exists.
		seed := api.Group("/seed")
		deps.SeedHandler.Register(seed)
	}
}
