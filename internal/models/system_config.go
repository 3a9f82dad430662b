package models

import "time"

// Дефолтные значения настроек, совпадают с исходной версией приложения
const (
	DefaultPaymentGatewayURL = "https://payment.example.com"
	DefaultFeeAmount         = 250000
)

// SystemConfig представляет настройки интеграций, редактируемые из админки
type SystemConfig struct {
	ID                int       `json:"id"`
	TelegramBotToken  string    `json:"telegram_bot_token"`
	TelegramChatID    string    `json:"telegram_chat_id"`
	PaymentGatewayURL string    `json:"payment_gateway_url"`
	DefaultFeeAmount  int       `json:"default_fee_amount"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
