package cases

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/delbarteam/delbar-api/internal/config"
	"github.com/delbarteam/delbar-api/internal/db"
	"github.com/delbarteam/delbar-api/internal/models"
)

// CaseService представляет сервис каталога анкет
type CaseService struct {
	cfg *config.Config
}

// NewCaseService создает новый экземпляр CaseService
func NewCaseService(cfg *config.Config) *CaseService {
	return &CaseService{cfg: cfg}
}

const caseColumns = `id, name, image, location, category, price, age, height, skin_color,
	body_type, personality_traits, experience_level, description, status,
	verified, online, is_persistent, details, comments, created_at, updated_at`

func scanCase(row pgx.Row) (*models.Case, error) {
	var cs models.Case
	var commentsBytes []byte

	err := row.Scan(
		&cs.ID,
		&cs.Name,
		&cs.Image,
		&cs.Location,
		&cs.Category,
		&cs.Price,
		&cs.Age,
		&cs.Height,
		&cs.SkinColor,
		&cs.BodyType,
		&cs.PersonalityTraits,
		&cs.ExperienceLevel,
		&cs.Description,
		&cs.Status,
		&cs.Verified,
		&cs.Online,
		&cs.IsPersistent,
		&cs.Details,
		&commentsBytes,
		&cs.CreatedAt,
		&cs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if commentsBytes != nil {
		if err := json.Unmarshal(commentsBytes, &cs.Comments); err != nil {
			log.Printf("Ошибка разбора отзывов анкеты %d: %v", cs.ID, err)
		}
	}

	return &cs, nil
}

// GetCases возвращает список активных анкет каталога
func (s *CaseService) GetCases(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT `+caseColumns+`
		FROM cases
		WHERE status = 'active'
		ORDER BY id ASC
	`)
	if err != nil {
		log.Printf("Ошибка запроса анкет: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения анкет"})
	}
	defer rows.Close()

	cases := []*models.Case{}
	for rows.Next() {
		cs, err := scanCase(rows)
		if err != nil {
			log.Printf("Ошибка сканирования анкеты: %v", err)
			continue
		}
		cases = append(cases, cs)
	}

	return c.JSON(fiber.Map{
		"cases": cases,
		"total": len(cases),
	})
}

// GetCase возвращает анкету по ID. Отсутствующая анкета подменяется
// сгенерированной и сохраняется в базу: каталог никогда не отвечает 404.
func (s *CaseService) GetCase(c fiber.Ctx) error {
	caseID, err := strconv.Atoi(c.Params("id"))
	if err != nil || caseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID анкеты"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	cs, err := scanCase(db.Pool.QueryRow(ctx, `
		SELECT `+caseColumns+`
		FROM cases
		WHERE id = $1
	`, caseID))

	if err == nil {
		return c.JSON(fiber.Map{"case": cs})
	}

	if err != pgx.ErrNoRows {
		log.Printf("⚠️ Ошибка получения анкеты %d, отдаем заглушку: %v", caseID, err)
		return c.JSON(fiber.Map{"case": GenerateCase(caseID, time.Now())})
	}

	// Анкеты нет - генерируем и best-effort сохраняем
	generated := GenerateCase(caseID, time.Now())
	if err := s.insertCase(generated); err != nil {
		log.Printf("⚠️ Ошибка сохранения сгенерированной анкеты %d: %v", caseID, err)
	} else {
		log.Printf("💾 Сгенерированная анкета %d сохранена в базу", caseID)
	}

	return c.JSON(fiber.Map{"case": generated})
}

// Load возвращает анкету из базы либо сгенерированную заглушку.
// Используется чатом: вход в чат не должен падать из-за каталога.
func Load(caseID int) *models.Case {
	ctx, cancel := db.GetContext()
	defer cancel()

	cs, err := scanCase(db.Pool.QueryRow(ctx, `
		SELECT `+caseColumns+`
		FROM cases
		WHERE id = $1
	`, caseID))

	if err == nil {
		return cs
	}
	if err != pgx.ErrNoRows {
		log.Printf("⚠️ Ошибка загрузки анкеты %d, используем заглушку: %v", caseID, err)
	}

	return GenerateCase(caseID, time.Now())
}

// CreateCase создает анкету (админ)
func (s *CaseService) CreateCase(c fiber.Ctx) error {
	var cs models.Case
	if err := c.Bind().Body(&cs); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if cs.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Имя обязательно"})
	}
	if !models.ValidCaseStatus(cs.Status) {
		cs.Status = models.CaseStatusActive
	}

	if err := s.insertCase(&cs); err != nil {
		log.Printf("Ошибка создания анкеты: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения анкеты"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"case":    cs,
		"message": "Анкета успешно создана",
	})
}

// insertCase вставляет анкету; при явном ID конфликт разрешается обновлением
func (s *CaseService) insertCase(cs *models.Case) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	comments, _ := json.Marshal(cs.Comments)

	if cs.ID > 0 {
		return db.Pool.QueryRow(ctx, `
			INSERT INTO cases (id, name, image, location, category, price, age, height, skin_color,
				body_type, personality_traits, experience_level, description, status,
				verified, online, is_persistent, details, comments)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
			ON CONFLICT (id) DO UPDATE SET updated_at = NOW()
			RETURNING id
		`, cs.ID, cs.Name, cs.Image, cs.Location, cs.Category, cs.Price, cs.Age, cs.Height,
			cs.SkinColor, cs.BodyType, cs.PersonalityTraits, cs.ExperienceLevel, cs.Description,
			cs.Status, cs.Verified, cs.Online, cs.IsPersistent, cs.Details, comments).Scan(&cs.ID)
	}

	return db.Pool.QueryRow(ctx, `
		INSERT INTO cases (name, image, location, category, price, age, height, skin_color,
			body_type, personality_traits, experience_level, description, status,
			verified, online, is_persistent, details, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`, cs.Name, cs.Image, cs.Location, cs.Category, cs.Price, cs.Age, cs.Height,
		cs.SkinColor, cs.BodyType, cs.PersonalityTraits, cs.ExperienceLevel, cs.Description,
		cs.Status, cs.Verified, cs.Online, cs.IsPersistent, cs.Details, comments).Scan(&cs.ID)
}

// UpdateCase обновляет анкету (админ)
func (s *CaseService) UpdateCase(c fiber.Ctx) error {
	caseID, err := strconv.Atoi(c.Params("id"))
	if err != nil || caseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID анкеты"})
	}

	var cs models.Case
	if err := c.Bind().Body(&cs); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if cs.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Имя обязательно"})
	}
	if !models.ValidCaseStatus(cs.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус анкеты"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	comments, _ := json.Marshal(cs.Comments)

	tag, err := db.Pool.Exec(ctx, `
		UPDATE cases
		SET name = $1, image = $2, location = $3, category = $4, price = $5, age = $6,
			height = $7, skin_color = $8, body_type = $9, personality_traits = $10,
			experience_level = $11, description = $12, status = $13, verified = $14,
			online = $15, is_persistent = $16, details = $17, comments = $18, updated_at = NOW()
		WHERE id = $19
	`, cs.Name, cs.Image, cs.Location, cs.Category, cs.Price, cs.Age, cs.Height,
		cs.SkinColor, cs.BodyType, cs.PersonalityTraits, cs.ExperienceLevel, cs.Description,
		cs.Status, cs.Verified, cs.Online, cs.IsPersistent, cs.Details, comments, caseID)

	if err != nil {
		log.Printf("Ошибка обновления анкеты: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления анкеты"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Анкета не найдена"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Анкета успешно обновлена",
	})
}

// UpdateCaseStatus меняет статус анкеты (админ)
func (s *CaseService) UpdateCaseStatus(c fiber.Ctx) error {
	caseID, err := strconv.Atoi(c.Params("id"))
	if err != nil || caseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID анкеты"})
	}

	var requestData struct {
		Status string `json:"status"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}
	if !models.ValidCaseStatus(requestData.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус анкеты"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `
		UPDATE cases SET status = $1, updated_at = NOW() WHERE id = $2
	`, requestData.Status, caseID)

	if err != nil {
		log.Printf("Ошибка изменения статуса анкеты: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка изменения статуса"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Анкета не найдена"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Статус анкеты обновлен",
	})
}

// GetAllCases возвращает все анкеты без фильтра по статусу (админ)
func (s *CaseService) GetAllCases(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT `+caseColumns+`
		FROM cases
		ORDER BY created_at DESC
	`)
	if err != nil {
		log.Printf("Ошибка запроса анкет: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения анкет"})
	}
	defer rows.Close()

	cases := []*models.Case{}
	for rows.Next() {
		cs, err := scanCase(rows)
		if err != nil {
			log.Printf("Ошибка сканирования анкеты: %v", err)
			continue
		}
		cases = append(cases, cs)
	}

	return c.JSON(fiber.Map{
		"cases": cases,
		"total": len(cases),
	})
}
