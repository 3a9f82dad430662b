package chat

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/delbarteam/delbar-api/internal/chatflow"
	"github.com/delbarteam/delbar-api/internal/config"
	"github.com/delbarteam/delbar-api/internal/db"
	"github.com/delbarteam/delbar-api/internal/models"
	"github.com/delbarteam/delbar-api/internal/services/cases"
	"github.com/delbarteam/delbar-api/internal/utils"
)

// ChatService представляет сервис активного чата и списка чатов
type ChatService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	manager    *chatflow.Manager
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(cfg *config.Config, manager *chatflow.Manager) *ChatService {
	return &ChatService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		manager:    manager,
	}
}

// EnterChat открывает активный чат с анкетой по коду доступа
func (s *ChatService) EnterChat(c fiber.Ctx) error {
	clientID := c.Locals("clientID").(string)

	caseID, err := strconv.Atoi(c.Params("caseID"))
	if err != nil || caseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID анкеты"})
	}

	var requestData struct {
		AccessCode string `json:"access_code"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	caseData := cases.Load(caseID)

	engine := s.manager.Engine(clientID)
	session, err := engine.Start(caseData, requestData.AccessCode)
	if err != nil {
		if errors.Is(err, chatflow.ErrInvalidAccessCode) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "کد دسترسی نامعتبر است"})
		}
		log.Printf("Ошибка входа в чат: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка входа в чат"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

// GetSession возвращает текущее состояние сессии, восстанавливая
// сохраненную при необходимости
func (s *ChatService) GetSession(c fiber.Ctx) error {
	clientID := c.Locals("clientID").(string)

	engine := s.manager.Engine(clientID)
	session := engine.Resume()
	if session == nil {
		return c.JSON(fiber.Map{"active": false})
	}

	return c.JSON(fiber.Map{
		"active":  true,
		"session": session,
	})
}

// SendMessage добавляет сообщение пользователя в активный чат
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	clientID := c.Locals("clientID").(string)

	var requestData struct {
		Text string `json:"text"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	engine := s.manager.Engine(clientID)
	session, err := engine.SendMessage(requestData.Text)
	if err != nil {
		return s.flowError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

// SubmitPhone принимает номер телефона на финальном шаге сценария
func (s *ChatService) SubmitPhone(c fiber.Ctx) error {
	clientID := c.Locals("clientID").(string)

	var requestData struct {
		Phone string `json:"phone"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	engine := s.manager.Engine(clientID)
	session, err := engine.SubmitPhone(requestData.Phone)
	if err != nil {
		return s.flowError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

// SuspendSession — выход к списку чатов без завершения сессии
func (s *ChatService) SuspendSession(c fiber.Ctx) error {
	clientID := c.Locals("clientID").(string)

	s.manager.Engine(clientID).Suspend()

	return c.JSON(fiber.Map{"success": true})
}

// EndSession полностью завершает активную сессию клиента
func (s *ChatService) EndSession(c fiber.Ctx) error {
	clientID := c.Locals("clientID").(string)

	s.manager.Engine(clientID).End()
	s.manager.Remove(clientID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Сессия завершена",
	})
}

// flowError превращает ошибку сценария в HTTP-ответ
func (s *ChatService) flowError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, chatflow.ErrNoActiveSession):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Нет активной сессии"})
	case errors.Is(err, chatflow.ErrChatClosed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Чат закрыт"})
	case errors.Is(err, chatflow.ErrEmptyMessage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Пустое сообщение"})
	case errors.Is(err, chatflow.ErrInvalidPhoneNumber):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "شماره تماس نامعتبر است"})
	case errors.Is(err, chatflow.ErrPhoneNotExpected):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Ввод телефона сейчас недоступен"})
	}

	log.Printf("Ошибка сценария чата: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка чата"})
}

// GetChats возвращает список чатов клиента, построенный по избранному.
// Каждая запись обновляется живыми данными анкеты; при недоступности
// базы используется кешированный снимок, запись не выкидывается.
func (s *ChatService) GetChats(c fiber.Ctx) error {
	clientID := c.Locals("clientID").(string)

	clientUUID, err := uuid.Parse(clientID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Невалидный идентификатор клиента"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT case_id, cached_case
		FROM favorites
		WHERE client_id = $1
		ORDER BY created_at DESC
	`, clientUUID)
	if err != nil {
		log.Printf("Ошибка запроса избранного: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения списка чатов"})
	}
	defer rows.Close()

	type favRow struct {
		caseID int
		cached *models.Case
	}

	favorites := []favRow{}
	for rows.Next() {
		var fav favRow
		var cachedBytes []byte
		if err := rows.Scan(&fav.caseID, &cachedBytes); err != nil {
			log.Printf("Ошибка сканирования избранного: %v", err)
			continue
		}
		if cachedBytes != nil {
			if err := json.Unmarshal(cachedBytes, &fav.cached); err != nil {
				log.Printf("Ошибка разбора кешированной анкеты: %v", err)
			}
		}
		favorites = append(favorites, fav)
	}

	// Текущая активная сессия добавляет последнее сообщение в свою комнату
	session := s.manager.Engine(clientID).Snapshot()

	chats := []models.ChatRoom{}
	for _, fav := range favorites {
		caseData := s.refreshCase(fav.caseID, fav.cached, clientUUID)
		if caseData == nil {
			continue
		}

		room := models.ChatRoom{
			ID:   fav.caseID,
			Case: caseData,
		}

		if session != nil && session.CaseID == fav.caseID && len(session.Messages) > 0 {
			last := session.Messages[len(session.Messages)-1]
			room.LastMessage = last.Text
			ts := last.Timestamp
			room.LastMessageTime = &ts
		}

		chats = append(chats, room)
	}

	return c.JSON(fiber.Map{
		"chats": chats,
		"total": len(chats),
	})
}

// refreshCase подтягивает живую анкету и обновляет кеш; при сбое
// возвращает кешированный снимок
func (s *ChatService) refreshCase(caseID int, cached *models.Case, clientUUID uuid.UUID) *models.Case {
	ctx, cancel := db.GetContext()
	defer cancel()

	var live models.Case
	var commentsBytes []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, image, location, category, price, age, description, status,
			verified, online, comments, created_at, updated_at
		FROM cases
		WHERE id = $1
	`, caseID).Scan(
		&live.ID, &live.Name, &live.Image, &live.Location, &live.Category,
		&live.Price, &live.Age, &live.Description, &live.Status,
		&live.Verified, &live.Online, &commentsBytes, &live.CreatedAt, &live.UpdatedAt,
	)

	if err != nil {
		if err != pgx.ErrNoRows {
			log.Printf("⚠️ Анкета %d недоступна, используем кеш: %v", caseID, err)
		}
		return cached
	}

	if commentsBytes != nil {
		if err := json.Unmarshal(commentsBytes, &live.Comments); err != nil {
			log.Printf("Ошибка разбора отзывов анкеты %d: %v", caseID, err)
		}
	}

	// Best-effort обновление кеша
	if cachedBytes, err := json.Marshal(&live); err == nil {
		if _, err := db.Pool.Exec(ctx, `
			UPDATE favorites SET cached_case = $1 WHERE client_id = $2 AND case_id = $3
		`, cachedBytes, clientUUID, caseID); err != nil {
			log.Printf("⚠️ Ошибка обновления кеша анкеты %d: %v", caseID, err)
		}
	}

	return &live
}

// AddChat добавляет анкету в избранное (комнату в список чатов)
func (s *ChatService) AddChat(c fiber.Ctx) error {
	clientID := c.Locals("clientID").(string)

	clientUUID, err := uuid.Parse(clientID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Невалидный идентификатор клиента"})
	}

	caseID, err := strconv.Atoi(c.Params("caseID"))
	if err != nil || caseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID анкеты"})
	}

	caseData := cases.Load(caseID)
	cachedBytes, _ := json.Marshal(caseData)

	ctx, cancel := db.GetContext()
	defer cancel()

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO favorites (id, client_id, case_id, cached_case)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (client_id, case_id) DO UPDATE SET cached_case = EXCLUDED.cached_case
	`, uuid.New(), clientUUID, caseID, cachedBytes)

	if err != nil {
		log.Printf("Ошибка добавления в избранное: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка добавления чата"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Чат добавлен в список",
	})
}

// DeleteChat удаляет комнату из списка чатов клиента
func (s *ChatService) DeleteChat(c fiber.Ctx) error {
	clientID := c.Locals("clientID").(string)

	clientUUID, err := uuid.Parse(clientID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Невалидный идентификатор клиента"})
	}

	caseID, err := strconv.Atoi(c.Params("id"))
	if err != nil || caseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID анкеты"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM favorites WHERE client_id = $1 AND case_id = $2
	`, clientUUID, caseID)

	if err != nil {
		log.Printf("Ошибка удаления из избранного: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления чата"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Чат не найден"})
	}

	// Активная сессия с этой анкетой тоже завершается
	engine := s.manager.Engine(clientID)
	if session := engine.Snapshot(); session != nil && session.CaseID == caseID {
		engine.End()
		s.manager.Remove(clientID)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Чат удален",
	})
}
