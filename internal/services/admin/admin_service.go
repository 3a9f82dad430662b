package admin

import (
	"crypto/subtle"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v3"

	"github.com/delbarteam/delbar-api/internal/config"
	"github.com/delbarteam/delbar-api/internal/models"
	"github.com/delbarteam/delbar-api/internal/sysconfig"
	"github.com/delbarteam/delbar-api/internal/utils"
)

// AdminService представляет сервис панели администратора
type AdminService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewAdminService создает новый экземпляр AdminService
func NewAdminService(cfg *config.Config) *AdminService {
	return &AdminService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetJWTService возвращает JWT сервис
func (s *AdminService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// Login проверяет учетные данные администратора и выдает токен
func (s *AdminService) Login(c fiber.Ctx) error {
	var requestData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.Username == "" || requestData.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Логин и пароль обязательны"})
	}

	userOK := subtle.ConstantTimeCompare([]byte(requestData.Username), []byte(s.cfg.AdminConfig.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(requestData.Password), []byte(s.cfg.AdminConfig.Password)) == 1
	if !userOK || !passOK {
		log.Printf("⚠️ Неудачная попытка входа в админку: %s", requestData.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Неверный логин или пароль"})
	}

	token, err := s.jwtService.GenerateAdminToken(requestData.Username)
	if err != nil {
		log.Printf("Ошибка создания токена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания токена"})
	}

	log.Printf("✅ Администратор вошел в систему: %s", requestData.Username)
	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

// GetSettings возвращает настройки системы
func (s *AdminService) GetSettings(c fiber.Ctx) error {
	cfg, err := sysconfig.Get()
	if err != nil {
		log.Printf("Ошибка чтения настроек: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения настроек"})
	}

	return c.JSON(fiber.Map{"settings": cfg})
}

// UpdateSettings обновляет настройки системы
func (s *AdminService) UpdateSettings(c fiber.Ctx) error {
	var requestData struct {
		TelegramBotToken  string `json:"telegram_bot_token"`
		TelegramChatID    string `json:"telegram_chat_id"`
		PaymentGatewayURL string `json:"payment_gateway_url"`
		DefaultFeeAmount  int    `json:"default_fee_amount"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.PaymentGatewayURL == "" {
		requestData.PaymentGatewayURL = models.DefaultPaymentGatewayURL
	}
	if requestData.DefaultFeeAmount <= 0 {
		requestData.DefaultFeeAmount = models.DefaultFeeAmount
	}

	updated, err := sysconfig.Update(&models.SystemConfig{
		TelegramBotToken:  requestData.TelegramBotToken,
		TelegramChatID:    requestData.TelegramChatID,
		PaymentGatewayURL: requestData.PaymentGatewayURL,
		DefaultFeeAmount:  requestData.DefaultFeeAmount,
	})
	if err != nil {
		log.Printf("Ошибка обновления настроек: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения настроек"})
	}

	log.Println("✅ Настройки системы обновлены")
	return c.JSON(fiber.Map{
		"success":  true,
		"settings": updated,
	})
}

func xlsxFileName(prefix string) string {
	return fmt.Sprintf("attachment; filename=%s.xlsx", prefix)
}
