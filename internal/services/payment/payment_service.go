package payment

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/delbarteam/delbar-api/internal/config"
	"github.com/delbarteam/delbar-api/internal/models"
	"github.com/delbarteam/delbar-api/internal/services/cases"
	"github.com/delbarteam/delbar-api/internal/sysconfig"
	"github.com/delbarteam/delbar-api/internal/telegram"
	"github.com/delbarteam/delbar-api/internal/utils"
)

// PaymentService представляет сервис оплаты доступа
type PaymentService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	notifier   *telegram.Notifier
}

// NewPaymentService создает новый экземпляр PaymentService
func NewPaymentService(cfg *config.Config, notifier *telegram.Notifier) *PaymentService {
	return &PaymentService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		notifier:   notifier,
	}
}

// GetConfig возвращает платежные настройки для клиента
func (s *PaymentService) GetConfig(c fiber.Ctx) error {
	cfg, err := sysconfig.Get()
	if err != nil {
		log.Printf("⚠️ Ошибка чтения настроек, используем дефолты: %v", err)
		cfg = &models.SystemConfig{
			PaymentGatewayURL: models.DefaultPaymentGatewayURL,
			DefaultFeeAmount:  models.DefaultFeeAmount,
		}
	}

	return c.JSON(fiber.Map{
		"payment_gateway_url": cfg.PaymentGatewayURL,
		"default_fee_amount":  cfg.DefaultFeeAmount,
		"configured":          gatewayConfigured(cfg.PaymentGatewayURL),
	})
}

// StartPayment фиксирует начало оплаты: уведомляет операторов и отдает
// клиенту ссылку на шлюз. Сам шлюз внешний, колбэков нет.
func (s *PaymentService) StartPayment(c fiber.Ctx) error {
	caseID, err := strconv.Atoi(c.Params("caseID"))
	if err != nil || caseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID анкеты"})
	}

	var requestData struct {
		FullName    string `json:"full_name"`
		NationalID  string `json:"national_id"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	cfg, err := sysconfig.Get()
	if err != nil {
		log.Printf("Ошибка чтения настроек: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения настроек оплаты"})
	}

	if !gatewayConfigured(cfg.PaymentGatewayURL) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "لینک پرداخت تنظیم نشده است. لطفاً با مدیر سیستم تماس بگیرید"})
	}

	caseData := cases.Load(caseID)
	amount := cfg.DefaultFeeAmount
	if amount == 0 {
		amount = models.DefaultFeeAmount
	}

	s.notifier.SendAsync(paymentStartedMessage(requestData.FullName, requestData.NationalID,
		requestData.PhoneNumber, caseData, amount, cfg.PaymentGatewayURL, time.Now()))

	log.Printf("💳 Начата оплата: case=%d, сумма=%d", caseID, amount)

	return c.JSON(fiber.Map{
		"success":             true,
		"payment_gateway_url": cfg.PaymentGatewayURL,
		"amount":              amount,
	})
}

// GetQR отдает PNG с QR-кодом ссылки на платежный шлюз
func (s *PaymentService) GetQR(c fiber.Ctx) error {
	cfg, err := sysconfig.Get()
	if err != nil {
		log.Printf("Ошибка чтения настроек: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения настроек оплаты"})
	}

	if !gatewayConfigured(cfg.PaymentGatewayURL) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "لینک پرداخت تنظیم نشده است"})
	}

	png, err := qrcode.Encode(cfg.PaymentGatewayURL, qrcode.Medium, 256)
	if err != nil {
		log.Printf("Ошибка генерации QR-кода: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка генерации QR-кода"})
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}

// gatewayConfigured - дефолтная ссылка-заглушка считается ненастроенной
func gatewayConfigured(url string) bool {
	return url != "" && url != models.DefaultPaymentGatewayURL
}

// paymentStartedMessage собирает уведомление оператору о начале оплаты.
// Шаблон сохранен из исходной версии.
func paymentStartedMessage(fullName, nationalID, phone string, caseData *models.Case, amount int, gatewayURL string, at time.Time) string {
	return fmt.Sprintf(`💰 #پرداخت_شروع 💰
━━━━━━━━━━━━━━━━
👤 نام: %s
🆔 کد ملی: %s
📞 تلفن: %s
💎 کیس: %s
🏷️ کد کیس: %d
💵 مبلغ: %s تومان
🔗 لینک پرداخت: %s
━━━━━━━━━━━━━━━━
⏰ زمان: %s
🔄 وضعیت: انتقال به درگاه پرداخت`,
		orUnknown(fullName), orUnknown(nationalID), orUnknown(phone),
		orUnknown(caseData.Name), caseData.ID, FormatToman(amount), gatewayURL,
		telegram.FormatDateTime(at))
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "نامشخص"
	}
	return v
}

// FormatToman форматирует сумму персидскими цифрами с разделителями тысяч
func FormatToman(amount int) string {
	raw := strconv.Itoa(amount)

	// Разделители тысяч
	var grouped []byte
	for i, d := range []byte(raw) {
		if i > 0 && (len(raw)-i)%3 == 0 {
			grouped = append(grouped, []byte("٬")...)
		}
		grouped = append(grouped, d)
	}

	return telegram.PersianDigits(string(grouped))
}
