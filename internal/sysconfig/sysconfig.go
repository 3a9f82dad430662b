package sysconfig

import (
	"log"

	"github.com/delbarteam/delbar-api/internal/db"
	"github.com/delbarteam/delbar-api/internal/models"
)

// Get возвращает настройки системы. Если строки еще нет, она создается
// с дефолтными значениями - чтение никогда не отдает пустую конфигурацию.
func Get() (*models.SystemConfig, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	var cfg models.SystemConfig
	err := db.Pool.QueryRow(ctx, `
		SELECT id, telegram_bot_token, telegram_chat_id, payment_gateway_url, default_fee_amount, created_at, updated_at
		FROM system_config
		ORDER BY id ASC
		LIMIT 1
	`).Scan(&cfg.ID, &cfg.TelegramBotToken, &cfg.TelegramChatID, &cfg.PaymentGatewayURL,
		&cfg.DefaultFeeAmount, &cfg.CreatedAt, &cfg.UpdatedAt)

	if err == nil {
		return &cfg, nil
	}

	// Строки нет - создаем с дефолтами
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO system_config (telegram_bot_token, telegram_chat_id, payment_gateway_url, default_fee_amount)
		VALUES ('', '', $1, $2)
		RETURNING id, telegram_bot_token, telegram_chat_id, payment_gateway_url, default_fee_amount, created_at, updated_at
	`, models.DefaultPaymentGatewayURL, models.DefaultFeeAmount).Scan(
		&cfg.ID, &cfg.TelegramBotToken, &cfg.TelegramChatID, &cfg.PaymentGatewayURL,
		&cfg.DefaultFeeAmount, &cfg.CreatedAt, &cfg.UpdatedAt)

	if err != nil {
		return nil, err
	}

	log.Println("💾 Настройки системы созданы с дефолтными значениями")
	return &cfg, nil
}

// Update перезаписывает настройки системы
func Update(cfg *models.SystemConfig) (*models.SystemConfig, error) {
	current, err := Get()
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var updated models.SystemConfig
	err = db.Pool.QueryRow(ctx, `
		UPDATE system_config
		SET telegram_bot_token = $1, telegram_chat_id = $2, payment_gateway_url = $3,
			default_fee_amount = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id, telegram_bot_token, telegram_chat_id, payment_gateway_url, default_fee_amount, created_at, updated_at
	`, cfg.TelegramBotToken, cfg.TelegramChatID, cfg.PaymentGatewayURL, cfg.DefaultFeeAmount, current.ID).Scan(
		&updated.ID, &updated.TelegramBotToken, &updated.TelegramChatID, &updated.PaymentGatewayURL,
		&updated.DefaultFeeAmount, &updated.CreatedAt, &updated.UpdatedAt)

	if err != nil {
		return nil, err
	}

	return &updated, nil
}
