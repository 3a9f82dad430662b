package auth

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/delbarteam/delbar-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *AuthService) SetupRoutes(app *fiber.App) {
	app.Post("/api/auth/guest", s.GuestAuthHandler)
	app.Post("/api/auth/telegram", s.TelegramAuthHandler)

	// Профиль текущего клиента
	app.Get("/api/profile", func(c fiber.Ctx) error {
		clientID := c.Locals("clientID").(string)
		return c.JSON(fiber.Map{
			"client_id": clientID,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}, middleware.AuthMiddleware(s.jwtService))
}
