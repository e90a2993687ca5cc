package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/itops-lab/helpdesk/internal/api/http/handlers"
	"github.com/itops-lab/helpdesk/internal/auth"
	"github.com/itops-lab/helpdesk/internal/config"
	"github.com/itops-lab/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Public         *handlers.PublicHandler
	Tickets        *handlers.TicketsHandler
	MasterData     *handlers.MasterDataHandler
	Assignment     *handlers.AssignmentHandler
	Staff          *handlers.StaffHandler
	Content        *handlers.ContentHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    RateLimiter
	RateLimit      config.RateLimitConfig
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	public := api.Group("/public",
		rateLimitMiddleware(cfg.RateLimiter, "public", cfg.RateLimit.PublicRequests, cfg.RateLimit.Window(), logger))
	public.Get("/master-data", cfg.Public.MasterData)
	public.Post("/tickets", cfg.Public.CreateTicket)
	public.Post("/tickets/track", cfg.Public.TrackTicket)
	public.Post("/tickets/:code/comments", cfg.Public.AddComment)
	public.Post("/tickets/:code/survey", cfg.Public.SubmitSurvey)
	public.Get("/articles", cfg.Public.ListArticles)
	public.Get("/articles/:slug", cfg.Public.ReadArticle)

	admin := api.Group("/admin")
	admin.Post("/auth/login",
		rateLimitMiddleware(cfg.RateLimiter, "login", cfg.RateLimit.PublicRequests, cfg.RateLimit.Window(), logger),
		cfg.Staff.Login)

	staff := admin.Group("", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleAdmin, domain.StaffRoleAgent))
	staff.Get("/auth/me", cfg.Staff.Me)
	staff.Post("/auth/password", cfg.Staff.ChangePassword)

	staff.Get("/tickets", cfg.Tickets.ListTickets)
	staff.Post("/tickets", cfg.Tickets.CreateTicket)
	staff.Get("/tickets/:id", cfg.Tickets.GetTicket)
	staff.Patch("/tickets/:id/status", cfg.Tickets.UpdateStatus)
	staff.Patch("/tickets/:id/priority", cfg.Tickets.UpdatePriority)
	staff.Patch("/tickets/:id/assign", cfg.Tickets.Assign)
	staff.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
	staff.Post("/tickets/:id/reveal-employee-code", auth.RequireAdmin(), cfg.Tickets.RevealEmployeeCode)

	staff.Get("/articles", cfg.Content.ListArticles)
	staff.Post("/articles", cfg.Content.CreateArticle)
	staff.Get("/articles/:id", cfg.Content.GetArticle)
	staff.Put("/articles/:id", cfg.Content.UpdateArticle)
	staff.Delete("/articles/:id", cfg.Content.DeleteArticle)

	staff.Get("/reports/sla", cfg.Reports.SLA)
	staff.Get("/reports/sla/export", cfg.Reports.ExportSLA)
	staff.Get("/reports/summary", cfg.Reports.Summary)

	// Lookups used by ticket filters are readable by agents.
	staff.Get("/categories", cfg.MasterData.ListCategories)
	staff.Get("/priorities", cfg.MasterData.ListPriorities)
	staff.Get("/systems", cfg.MasterData.ListSystems)
	staff.Get("/teams", cfg.MasterData.ListTeams)
	staff.Get("/org-units", cfg.MasterData.OrgTree)

	adminOnly := staff.Group("", auth.RequireAdmin())
	adminOnly.Post("/categories", cfg.MasterData.CreateCategory)
	adminOnly.Put("/categories/:id", cfg.MasterData.UpdateCategory)
	adminOnly.Delete("/categories/:id", cfg.MasterData.DeleteCategory)
	adminOnly.Post("/priorities", cfg.MasterData.CreatePriority)
	adminOnly.Put("/priorities/:id", cfg.MasterData.UpdatePriority)
	adminOnly.Delete("/priorities/:id", cfg.MasterData.DeletePriority)
	adminOnly.Post("/systems", cfg.MasterData.CreateSystem)
	adminOnly.Put("/systems/:id", cfg.MasterData.UpdateSystem)
	adminOnly.Delete("/systems/:id", cfg.MasterData.DeleteSystem)
	adminOnly.Post("/teams", cfg.MasterData.CreateTeam)
	adminOnly.Put("/teams/:id", cfg.MasterData.UpdateTeam)
	adminOnly.Delete("/teams/:id", cfg.MasterData.DeleteTeam)
	adminOnly.Post("/org-units", cfg.MasterData.CreateOrgUnit)
	adminOnly.Put("/org-units/:id", cfg.MasterData.UpdateOrgUnit)
	adminOnly.Delete("/org-units/:id", cfg.MasterData.DeleteOrgUnit)

	adminOnly.Get("/assignment-rules/resolve", cfg.Assignment.Resolve)
	adminOnly.Get("/assignment-rules", cfg.Assignment.ListRules)
	adminOnly.Post("/assignment-rules", cfg.Assignment.CreateRule)
	adminOnly.Put("/assignment-rules/:id", cfg.Assignment.UpdateRule)
	adminOnly.Delete("/assignment-rules/:id", cfg.Assignment.DeleteRule)

	adminOnly.Get("/users", cfg.Staff.ListUsers)
	adminOnly.Post("/users", cfg.Staff.CreateUser)
	adminOnly.Get("/users/:id", cfg.Staff.GetUser)
	adminOnly.Put("/users/:id", cfg.Staff.UpdateUser)
	adminOnly.Delete("/users/:id", cfg.Staff.DeleteUser)

	adminOnly.Get("/notification-channels", cfg.Content.ListChannels)
	adminOnly.Post("/notification-channels", cfg.Content.CreateChannel)
	adminOnly.Put("/notification-channels/:id", cfg.Content.UpdateChannel)
	adminOnly.Delete("/notification-channels/:id", cfg.Content.DeleteChannel)
}
