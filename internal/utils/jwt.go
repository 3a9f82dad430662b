package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Роли в токене
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// JWTService отвечает за создание и валидацию JWT токенов
type JWTService struct {
	secretKey string
}

// NewJWTService создаёт новый экземпляр JWTService
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{secretKey: secretKey}
}

// GenerateToken создаёт JWT токен клиента
func (s *JWTService) GenerateToken(clientID string) (string, error) {
	return s.generate(clientID, RoleClient, 30*24*time.Hour)
}

// GenerateAdminToken создаёт JWT токен администратора
func (s *JWTService) GenerateAdminToken(username string) (string, error) {
	return s.generate(username, RoleAdmin, 24*time.Hour)
}

func (s *JWTService) generate(subject, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken проверяет JWT токен
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// ExtractClaims извлекает subject и роль из токена
func (s *JWTService) ExtractClaims(tokenString string) (subject, role string, err error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("невалидный токен: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("невалидные claims токена")
	}

	subject, _ = claims["sub"].(string)
	role, _ = claims["role"].(string)
	if subject == "" || role == "" {
		return "", "", fmt.Errorf("в токене отсутствует sub или role")
	}

	return subject, role, nil
}
