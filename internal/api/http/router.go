package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Assignments    *handlers.AssignmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/register", cfg.Auth.Register)
	app.Post("/auth/login", cfg.Auth.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.DeleteTicket)

	staffOnly := auth.RequireStaff()
	tickets.Post("/bulk-assign", staffOnly, cfg.Assignments.BulkAssign)
	tickets.Post("/:id/assign", staffOnly, cfg.Assignments.Assign)
	tickets.Post("/:id/unassign", staffOnly, cfg.Assignments.Unassign)
	tickets.Post("/:id/reassign", staffOnly, cfg.Assignments.Reassign)
	tickets.Post("/:id/auto-assign", staffOnly, cfg.Assignments.AutoAssign)
	tickets.Get("/:id/assignment-recommendations", staffOnly, cfg.Assignments.Recommendations)
	tickets.Get("/:id/assignment-events", cfg.Assignments.History)

	assignees := app.Group("/assignees", cfg.AuthMiddleware.Handle, staffOnly)
	assignees.Get("/workloads", cfg.Assignments.Workloads)
}
