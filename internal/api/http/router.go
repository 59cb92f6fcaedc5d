package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Users        *handlers.UsersHandler
	Tickets      *handlers.TicketsHandler
	Resolver     *auth.Resolver
	LoginLimiter fiber.Handler
}

// RegisterRoutes wires HTTP routes. Every route after the probes sees the
// resolved caller identity.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Use(auth.CurrentUser(cfg.Resolver))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	if cfg.LoginLimiter != nil {
		authGroup.Post("/login", cfg.LoginLimiter, cfg.Users.Login)
	} else {
		authGroup.Post("/login", cfg.Users.Login)
	}
	authGroup.Post("/logout", cfg.Users.Logout)
	authGroup.Get("/me", cfg.Users.Me)

	tickets := app.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)
}
