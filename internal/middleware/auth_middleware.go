package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/delbarteam/delbar-api/internal/utils"
)

// AuthMiddleware создаёт middleware для проверки клиентского JWT
func AuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		subject, role, err := extractBearer(c, jwtService)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		if role != utils.RoleClient {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Требуется клиентский токен"})
		}

		// Проверяем, что clientID является валидным UUID
		if _, err := uuid.Parse(subject); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Невалидный идентификатор клиента"})
		}

		c.Locals("clientID", subject)
		return c.Next()
	}
}

// AdminMiddleware создаёт middleware для проверки админского JWT
func AdminMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		subject, role, err := extractBearer(c, jwtService)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		if role != utils.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Требуются права администратора"})
		}

		c.Locals("adminUser", subject)
		return c.Next()
	}
}

func extractBearer(c fiber.Ctx, jwtService *utils.JWTService) (subject, role string, err error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", "", fiber.NewError(fiber.StatusUnauthorized, "Missing authorization header")
	}

	// Проверяем Bearer токен
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "", fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	subject, role, err = jwtService.ExtractClaims(parts[1])
	if err != nil {
		return "", "", fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	return subject, role, nil
}
