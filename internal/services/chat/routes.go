package chat

import (
	"github.com/gofiber/fiber/v3"

	"github.com/delbarteam/delbar-api/internal/middleware"
)

// SetupRoutes настраивает маршруты чата
func (s *ChatService) SetupRoutes(app *fiber.App) {
	// Активная сессия
	api := app.Group("/api/chat")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/:caseID/enter", s.EnterChat)
	api.Get("/session", s.GetSession)
	api.Post("/messages", s.SendMessage)
	api.Post("/phone", s.SubmitPhone)
	api.Post("/suspend", s.SuspendSession)
	api.Delete("/session", s.EndSession)

	// Список чатов
	chats := app.Group("/api/chats")
	chats.Use(middleware.AuthMiddleware(s.jwtService))

	chats.Get("/", s.GetChats)
	chats.Post("/:caseID", s.AddChat)
	chats.Delete("/:id", s.DeleteChat)
}
