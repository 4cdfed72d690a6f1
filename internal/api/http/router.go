package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/caseworks/servicedesk/internal/api/http/handlers"
	"github.com/caseworks/servicedesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Cases          *handlers.CasesHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)
	authProtected.Get("/me", cfg.Auth.Me)

	cases := app.Group("/cases", cfg.AuthMiddleware.Handle)
	cases.Post("", cfg.Cases.Create)
	cases.Get("", cfg.Cases.ListAll)
	// static segments must register before the :id wildcard
	cases.Get("/mine", cfg.Cases.ListMine)
	cases.Get("/search", cfg.Cases.Search)
	cases.Get("/:id", cfg.Cases.Get)
	cases.Put("/:id/state", cfg.Cases.UpdateState)
	cases.Post("/:id/comments", cfg.Cases.AddComment)
}
