package admin

import (
	"github.com/gofiber/fiber/v3"

	"github.com/delbarteam/delbar-api/internal/middleware"
)

// SetupRoutes настраивает маршруты панели администратора
func (s *AdminService) SetupRoutes(app *fiber.App) {
	app.Post("/api/admin/login", s.Login)

	api := app.Group("/api/admin")
	api.Use(middleware.AdminMiddleware(s.jwtService))

	api.Get("/settings", s.GetSettings)
	api.Put("/settings", s.UpdateSettings)
	api.Get("/export/cases", s.ExportCases)
	api.Get("/export/verifications", s.ExportVerifications)
}
