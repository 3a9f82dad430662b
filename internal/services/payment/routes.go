package payment

import (
	"github.com/gofiber/fiber/v3"

	"github.com/delbarteam/delbar-api/internal/middleware"
)

// SetupRoutes настраивает маршруты оплаты
func (s *PaymentService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/payment")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/config", s.GetConfig)
	api.Get("/qr", s.GetQR)
	api.Post("/:caseID/start", s.StartPayment)
}
