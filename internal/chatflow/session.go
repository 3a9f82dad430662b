package chatflow

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/delbarteam/delbar-api/internal/models"
)

// SnapshotVersion — версия схемы сохраненного снимка
const SnapshotVersion = "3.0"

// FlowState — состояние сценария чата. Единый тег вместо россыпи
// булевых флагов: недостижимые комбинации исключены по построению.
type FlowState string

const (
	StateIdle          FlowState = "idle"
	StateGreeting      FlowState = "greeting"
	StateNegotiating   FlowState = "negotiating"
	StateAwaitingPhone FlowState = "awaiting_phone"
	StateFinalNotice   FlowState = "final_notice"
	StateClosed        FlowState = "closed"
)

// Step возвращает числовой шаг сценария для клиента
func (s FlowState) Step() int {
	switch s {
	case StateGreeting:
		return 1
	case StateNegotiating:
		return 2
	case StateAwaitingPhone:
		return 3
	case StateFinalNotice:
		return 4
	case StateClosed:
		return 5
	}
	return 0
}

// Происхождение сообщения
const (
	OriginUser   = "user"
	OriginBot    = "bot"
	OriginSystem = "system"
)

// Тип сообщения
const (
	KindText   = "text"
	KindSystem = "system"
)

// Message — одно сообщение чата. Неизменяемо после создания,
// порядок вставки и есть порядок отображения.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Origin    string    `json:"origin"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"-"`
}

// Profile — отображаемая личность собеседницы
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	UniqueCode  string `json:"unique_code"`
	IsOnline    bool   `json:"is_online"`
	LastSeen    string `json:"last_seen"`
	Verified    bool   `json:"verified"`
	Location    string `json:"location"`
	Age         int    `json:"age"`
	Description string `json:"description"`
}

// Session — полное состояние одного чата пользователя с одной анкетой.
// Сохраняется и восстанавливается как единое целое.
type Session struct {
	CaseID             int
	Case               *models.Case
	Profile            Profile
	Messages           []Message
	UserMessageCount   int
	State              FlowState
	PhoneNumber        string
	Typing             bool
	FinalNoticeVisible bool
	LastSaved          time.Time
	Version            string
}

// PhoneInputVisible — ввод телефона показывается только в AwaitingPhone
func (s *Session) PhoneInputVisible() bool {
	return s.State == StateAwaitingPhone
}

// Closed сообщает, закрыт ли чат
func (s *Session) Closed() bool {
	return s.State == StateClosed
}

// newProfile строит профиль собеседницы по данным анкеты
func newProfile(c *models.Case, now time.Time) Profile {
	age := c.Age
	if age == 0 {
		age = 25
	}

	description := c.Description
	if description == "" {
		description = "کاربر تایید شده"
	}

	return Profile{
		ID:          fmt.Sprintf("%d", c.ID),
		Name:        c.Name,
		Avatar:      c.Image,
		UniqueCode:  generateUniqueCode(now),
		IsOnline:    rand.Float64() > 0.3,
		LastSeen:    fmt.Sprintf(labelLastSeen, rand.Intn(15)+1),
		// В чате бейдж подтверждения показывается всегда, как в исходной версии
		Verified:    true,
		Location:    c.Location,
		Age:         age,
		Description: description,
	}
}

// generateUniqueCode генерирует короткий код профиля вида C4821-093
func generateUniqueCode(now time.Time) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	return fmt.Sprintf("C%s-%03d", millis[len(millis)-4:], rand.Intn(999))
}

// displayName возвращает имя до разделителя " - " для подстановки в реплики
func displayName(full string) string {
	name, _, _ := strings.Cut(full, " - ")
	return name
}

// --- Сериализация снимка ---
// Временные метки на проводе хранятся в миллисекундах Unix, при
// восстановлении превращаются обратно в time.Time без потери значения.

type wireMessage struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Origin    string `json:"origin"`
	Kind      string `json:"kind"`
	Timestamp int64  `json:"timestamp"`
}

type wireSession struct {
	CaseID           int           `json:"case_id"`
	Case             *models.Case  `json:"case_data"`
	Profile          Profile       `json:"user_profile"`
	Messages         []wireMessage `json:"messages"`
	UserMessageCount int           `json:"user_message_count"`
	State            FlowState     `json:"state"`
	ChatStep         int           `json:"chat_step"`
	ShowPhoneInput   bool          `json:"show_phone_input"`
	PhoneNumber      string        `json:"phone_number"`
	ChatClosed       bool          `json:"chat_closed"`
	ShowFinalNotice  bool          `json:"show_final_notice"`
	IsTyping         bool          `json:"is_typing"`
	Timestamp        int64         `json:"timestamp"`
	Version          string        `json:"version"`
}

// MarshalJSON сериализует сессию в формат снимка
func (s *Session) MarshalJSON() ([]byte, error) {
	wire := wireSession{
		CaseID:           s.CaseID,
		Case:             s.Case,
		Profile:          s.Profile,
		Messages:         make([]wireMessage, 0, len(s.Messages)),
		UserMessageCount: s.UserMessageCount,
		State:            s.State,
		ChatStep:         s.State.Step(),
		ShowPhoneInput:   s.PhoneInputVisible(),
		PhoneNumber:      s.PhoneNumber,
		ChatClosed:       s.Closed(),
		ShowFinalNotice:  s.FinalNoticeVisible,
		IsTyping:         s.Typing,
		Timestamp:        s.LastSaved.UnixMilli(),
		Version:          s.Version,
	}

	for _, m := range s.Messages {
		wire.Messages = append(wire.Messages, wireMessage{
			ID:        m.ID,
			Text:      m.Text,
			Origin:    m.Origin,
			Kind:      m.Kind,
			Timestamp: m.Timestamp.UnixMilli(),
		})
	}

	return json.Marshal(wire)
}

// UnmarshalJSON восстанавливает сессию из снимка
func (s *Session) UnmarshalJSON(data []byte) error {
	var wire wireSession
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	s.CaseID = wire.CaseID
	s.Case = wire.Case
	s.Profile = wire.Profile
	s.UserMessageCount = wire.UserMessageCount
	s.State = wire.State
	s.PhoneNumber = wire.PhoneNumber
	s.FinalNoticeVisible = wire.ShowFinalNotice
	s.LastSaved = time.UnixMilli(wire.Timestamp)
	s.Version = wire.Version

	// Индикатор набора учитывается только для незакрытой сессии
	s.Typing = wire.IsTyping && !wire.ChatClosed

	s.Messages = make([]Message, 0, len(wire.Messages))
	for _, m := range wire.Messages {
		s.Messages = append(s.Messages, Message{
			ID:        m.ID,
			Text:      m.Text,
			Origin:    m.Origin,
			Kind:      m.Kind,
			Timestamp: time.UnixMilli(m.Timestamp),
		})
	}

	return nil
}
