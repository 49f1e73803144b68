package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Attachments    *handlers.AttachmentsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	// Signed download URLs carry their own grant; no session required.
	app.Get("/files/download", cfg.Attachments.Download)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	api.Get("/me", cfg.Users.Me)
	api.Patch("/me", cfg.Users.UpdateProfile)
	api.Get("/profiles", cfg.Users.ListProfiles)

	api.Get("/dashboard/stats", cfg.Dashboard.Stats)

	api.Get("/tickets", cfg.Tickets.List)
	api.Post("/tickets", cfg.Tickets.Create)
	api.Get("/tickets/next-number", cfg.Tickets.NextNumber)
	api.Get("/tickets/:id", cfg.Tickets.Get)
	api.Post("/tickets/:id/status/toggle", cfg.Tickets.ToggleStatus)
	api.Patch("/tickets/:id/title", cfg.Tickets.UpdateTitle)
	api.Patch("/tickets/:id/description", cfg.Tickets.UpdateDescription)
	api.Patch("/tickets/:id/priority", cfg.Tickets.UpdatePriority)
	api.Put("/tickets/:id/labels", cfg.Tickets.SetLabels)
	api.Put("/tickets/:id/assignee", cfg.Tickets.Assign)
	api.Delete("/tickets/:id", cfg.Tickets.Delete)
	api.Post("/tickets/:id/comments", cfg.Tickets.AddComment)

	api.Get("/tickets/:id/attachments", cfg.Attachments.List)
	api.Post("/tickets/:id/attachments", cfg.Attachments.Upload)
	api.Get("/attachments/:id/url", cfg.Attachments.SignedURL)
	api.Delete("/attachments/:id", cfg.Attachments.Delete)

	admin := api.Group("/admin", auth.RequireAdmin())
	admin.Get("/users", cfg.Users.ListUsers)
	admin.Post("/users", cfg.Users.CreateUser)
	admin.Put("/users/:id/role", cfg.Users.AssignRole)
}
