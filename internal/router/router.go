package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/exambel/exambel-api/internal/config"
	"github.com/exambel/exambel-api/internal/handler"
	"github.com/exambel/exambel-api/internal/middleware"
	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/observability"
	"github.com/exambel/exambel-api/internal/repository"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	AdminTeacherHandler *handler.AdminTeacherHandler
	ActivityHandler     *handler.ActivityHandler
	ClassHandler        *handler.ClassHandler
	StudentHandler      *handler.StudentHandler
	ExamHandler         *handler.ExamHandler
	RealtimeHandler     *handler.RealtimeHandler
	Accounts            repository.AccountRepository
	JWTMiddleware       fiber.Handler
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

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute))
		deps.AuthHandler.Register(auth)

		session := api.Group("/auth", jwtMiddleware)
		deps.AuthHandler.RegisterSession(session)
	}

	if deps.ExamHandler != nil {
		public := api.Group("/public")
		deps.ExamHandler.RegisterPublic(public)
	}

	// Admin surface: token, role and the route gate all have to agree.
	admin := api.Group("/admin",
		jwtMiddleware,
		middleware.RequireRole(string(models.RoleAdmin)),
		middleware.AuthorizeRoute(deps.Accounts, models.RouteAdminDashboard),
	)
	if deps.AdminTeacherHandler != nil {
		deps.AdminTeacherHandler.Register(admin)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(admin)
	}

	// Teacher surface: approved teachers only.
	teacherGuards := []fiber.Handler{
		jwtMiddleware,
		middleware.RequireRole(string(models.RoleTeacher)),
		middleware.AuthorizeRoute(deps.Accounts, models.RouteTeacherDashboard),
	}
	if deps.ClassHandler != nil {
		deps.ClassHandler.Register(api.Group("/classes", teacherGuards...))
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students", teacherGuards...))
	}
	if deps.ExamHandler != nil {
		deps.ExamHandler.Register(api.Group("/exams", teacherGuards...))
	}

	// Change feed: admins and approved teachers. The account gate re-checks
	// status on connect so a revoked account cannot ride out its token.
	if deps.RealtimeHandler != nil {
		deps.RealtimeHandler.Register(api.Group("/ws",
			jwtMiddleware,
			middleware.AuthorizeDashboards(deps.Accounts),
		))
	}
}
