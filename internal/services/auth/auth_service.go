package auth

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/delbarteam/delbar-api/internal/config"
	"github.com/delbarteam/delbar-api/internal/utils"
)

// Пространство имен для детерминированных идентификаторов Telegram-клиентов:
// один и тот же пользователь Telegram всегда получает один clientID
var telegramClientNamespace = uuid.MustParse("8f7e2a40-1f5b-4c09-9be2-6c1d42a7d210")

// AuthService – структура для обработки авторизации
type AuthService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewAuthService – конструктор AuthService
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetJWTService возвращает JWT сервис
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// GuestAuthHandler выдает анонимный клиентский токен. Приложение
// работает без регистрации: клиент идентифицируется случайным UUID.
func (s *AuthService) GuestAuthHandler(c fiber.Ctx) error {
	clientID := uuid.New().String()

	token, err := s.jwtService.GenerateToken(clientID)
	if err != nil {
		log.Printf("Ошибка создания токена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate JWT"})
	}

	return c.JSON(fiber.Map{
		"token":     token,
		"client_id": clientID,
	})
}

// TelegramAuthHandler проверяет initData Mini App, создает JWT и возвращает его
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	var payload struct {
		InitData string `json:"init_data"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	if s.cfg.TelegramBotToken == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Telegram auth is not configured"})
	}

	// Проверяем initData
	expiration := 24 * time.Hour
	if err := initdata.Validate(payload.InitData, s.cfg.TelegramBotToken, expiration); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Telegram data"})
	}

	// Парсим данные
	data, err := initdata.Parse(payload.InitData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to parse initData"})
	}

	// Один Telegram-пользователь - один стабильный clientID
	clientID := uuid.NewSHA1(telegramClientNamespace, []byte(fmt.Sprintf("%d", data.User.ID))).String()

	jwtToken, err := s.jwtService.GenerateToken(clientID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate JWT"})
	}

	return c.JSON(fiber.Map{
		"token":     jwtToken,
		"client_id": clientID,
		"user": fiber.Map{
			"id":         data.User.ID,
			"first_name": data.User.FirstName,
			"last_name":  data.User.LastName,
			"username":   data.User.Username,
			"photo_url":  data.User.PhotoURL,
		},
	})
}
