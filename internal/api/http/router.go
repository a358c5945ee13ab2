package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/process-raci/internal/api/http/handlers"
	"github.com/spec-kit/process-raci/internal/auth"
	"github.com/spec-kit/process-raci/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Processes      *handlers.ProcessesHandler
	Org            *handlers.OrgHandler
	Raci           *handlers.RaciHandler
	Metrics        nethttp.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	edit := auth.RequireEditor()

	api.Get("/me", cfg.Users.Me)
	api.Put("/users/:id/role", auth.RequireRole(domain.MemberRoleOwner), cfg.Users.SetRole)

	processes := api.Group("/processes")
	processes.Get("/", cfg.Processes.List)
	processes.Post("/", edit, cfg.Processes.Create)
	processes.Get("/:id", cfg.Processes.Get)
	processes.Put("/:id", edit, cfg.Processes.Update)
	processes.Delete("/:id", edit, cfg.Processes.Delete)
	processes.Post("/:id/steps", edit, cfg.Processes.InsertStep)
	processes.Post("/:id/steps/move", edit, cfg.Processes.MoveStep)
	processes.Put("/:id/steps/:stepId", edit, cfg.Processes.UpdateStep)
	processes.Delete("/:id/steps/:stepId", edit, cfg.Processes.RemoveStep)
	processes.Put("/:id/steps/:stepId/branches", edit, cfg.Processes.SetBranch)
	processes.Get("/:id/diagram", cfg.Processes.Diagram)
	processes.Get("/:id/history", cfg.Processes.History)
	processes.Post("/:id/proposal", edit, cfg.Processes.Propose)
	processes.Post("/:id/proposal/apply", edit, cfg.Processes.ApplyProposal)

	api.Get("/departments", cfg.Org.ListDepartments)
	api.Post("/departments", edit, cfg.Org.CreateDepartment)
	api.Put("/departments/:id", edit, cfg.Org.UpdateDepartment)
	api.Delete("/departments/:id", edit, cfg.Org.DeleteDepartment)
	api.Post("/departments/:id/roles", edit, cfg.Org.CreateRole)
	api.Put("/roles/:id", edit, cfg.Org.UpdateRole)
	api.Delete("/roles/:id", edit, cfg.Org.DeleteRole)

	raci := api.Group("/raci")
	raci.Get("/", cfg.Raci.Overview)
	raci.Get("/departments/:id", cfg.Raci.Department)
	raci.Get("/departments/:id/export", cfg.Raci.Export)
	raci.Post("/departments/:id/actions", edit, cfg.Raci.CreateAction)
	raci.Put("/actions/:id", edit, cfg.Raci.RenameAction)
	raci.Delete("/actions/:id", edit, cfg.Raci.DeleteAction)
	raci.Put("/actions/:id/cells/:roleId", edit, cfg.Raci.SetCell)
}
