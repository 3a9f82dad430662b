package verification

import (
	"github.com/gofiber/fiber/v3"

	"github.com/delbarteam/delbar-api/internal/middleware"
)

// SetupRoutes настраивает маршруты проверки личности
func (s *VerificationService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/verifications")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/:caseID", s.CreateVerification)

	admin := app.Group("/api/admin/verifications")
	admin.Use(middleware.AdminMiddleware(s.jwtService))

	admin.Get("/", s.GetVerifications)
}
