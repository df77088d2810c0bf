package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/venuepass/ticketing-service/internal/api/http/handlers"
	"github.com/venuepass/ticketing-service/internal/auth"
	"github.com/venuepass/ticketing-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Operators      *handlers.OperatorsHandler
	Tickets        *handlers.TicketsHandler
	Events         *handlers.EventsHandler
	Clients        *handlers.ClientsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Everything past the health and auth
// endpoints requires an authenticated operator.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Operators.Register)
	authGroup.Post("/login", cfg.Operators.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.Issue)
	tickets.Post("/validate", cfg.Tickets.ValidateToken)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/status", cfg.Tickets.Transition)

	events := protected.Group("/events")
	events.Get("", cfg.Events.ListActive)
	events.Post("", cfg.Events.CreateEvent)
	events.Get("/:id", cfg.Events.GetEvent)
	events.Patch("/:id/active", auth.RequireRole(domain.UserRoleAdmin), cfg.Events.SetActive)
	events.Post("/:id/templates", cfg.Events.CreateTemplate)
	events.Get("/:id/templates", cfg.Events.ListTemplates)
	events.Get("/:id/tickets", cfg.Tickets.ListByEvent)

	clients := protected.Group("/clients")
	clients.Post("", cfg.Clients.Create)
	clients.Get("/document/:documentId", cfg.Clients.GetByDocument)
	clients.Get("/:id", cfg.Clients.Get)
	clients.Get("/:id/tickets", cfg.Tickets.ListByClient)
}
