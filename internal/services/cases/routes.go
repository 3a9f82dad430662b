package cases

import (
	"github.com/gofiber/fiber/v3"

	"github.com/delbarteam/delbar-api/internal/middleware"
	"github.com/delbarteam/delbar-api/internal/utils"
)

// SetupRoutes настраивает маршруты каталога анкет
func (s *CaseService) SetupRoutes(app *fiber.App, jwtService *utils.JWTService) {
	// Публичные маршруты каталога
	app.Get("/api/cases", s.GetCases)
	app.Get("/api/cases/:id", s.GetCase)

	// Админские маршруты управления каталогом
	admin := app.Group("/api/admin/cases")
	admin.Use(middleware.AdminMiddleware(jwtService))

	admin.Get("/", s.GetAllCases)
	admin.Post("/", s.CreateCase)
	admin.Put("/:id", s.UpdateCase)
	admin.Patch("/:id/status", s.UpdateCaseStatus)
}
