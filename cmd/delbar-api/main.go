package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/delbarteam/delbar-api/internal/chatflow"
	"github.com/delbarteam/delbar-api/internal/config"
	"github.com/delbarteam/delbar-api/internal/db"
	"github.com/delbarteam/delbar-api/internal/services/admin"
	"github.com/delbarteam/delbar-api/internal/services/auth"
	"github.com/delbarteam/delbar-api/internal/services/cases"
	"github.com/delbarteam/delbar-api/internal/services/chat"
	"github.com/delbarteam/delbar-api/internal/services/payment"
	"github.com/delbarteam/delbar-api/internal/services/verification"
	"github.com/delbarteam/delbar-api/internal/storage"
	"github.com/delbarteam/delbar-api/internal/sysconfig"
	"github.com/delbarteam/delbar-api/internal/telegram"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	// Уведомления операторам. Реквизиты читаются при каждой отправке:
	// токен и чат редактируются из админки без перезапуска сервиса.
	notifier := telegram.NewNotifier(func() telegram.Credentials {
		sc, err := sysconfig.Get()
		if err != nil {
			log.Printf("⚠️ Ошибка чтения настроек Telegram: %v", err)
			return telegram.Credentials{}
		}
		return telegram.Credentials{BotToken: sc.TelegramBotToken, ChatID: sc.TelegramChatID}
	})

	// Движки сессий чата поверх постоянного хранилища
	manager := chatflow.NewManager(storage.NewPostgres(), notifier, chatflow.NewRealClock())

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Delbar API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	authService := auth.NewAuthService(cfg)
	adminService := admin.NewAdminService(cfg)
	caseService := cases.NewCaseService(cfg)
	chatService := chat.NewChatService(cfg, manager)
	verificationService := verification.NewVerificationService(cfg, notifier)
	paymentService := payment.NewPaymentService(cfg, notifier)

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	adminService.SetupRoutes(app)
	caseService.SetupRoutes(app, adminService.GetJWTService())
	chatService.SetupRoutes(app)
	verificationService.SetupRoutes(app)
	paymentService.SetupRoutes(app)

	// Запускаем сервер
	log.Printf("✅ Delbar API запущен на порту %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
