package chatflow

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/delbarteam/delbar-api/internal/models"
	"github.com/delbarteam/delbar-api/internal/storage"
	"github.com/delbarteam/delbar-api/internal/telegram"
)

// Sink — внешний канал доставки уведомлений операторам
type Sink interface {
	SendAsync(text string)
}

// Engine управляет одной активной сессией чата клиента: сценарные ответы,
// сбор номера телефона, сохранение и восстановление состояния.
//
// Все отложенные переходы проходят через последовательность шагов с
// проверкой поколения: End поднимает счетчик поколения, и любой уже
// взведенный таймер, сработав, не трогает сброшенное состояние.
type Engine struct {
	clientID string
	store    storage.Store
	sink     Sink
	clock    Clock

	mu         sync.Mutex
	sess       *Session
	generation uint64
	timers     []Timer
	ticker     Ticker
	done       chan struct{}
}

// flowStep — один шаг сценария: задержка и действие
type flowStep struct {
	delay  time.Duration
	action func()
}

// NewEngine создает движок сессии для клиента
func NewEngine(clientID string, store storage.Store, sink Sink, clock Clock) *Engine {
	return &Engine{
		clientID: clientID,
		store:    store,
		sink:     sink,
		clock:    clock,
	}
}

// Resume восстанавливает сохраненную сессию клиента, если она есть и не
// протухла. Возвращает снимок либо nil.
func (e *Engine) Resume() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess != nil {
		return e.snapshotLocked()
	}

	sess := restoreSession(e.store, e.clientID, e.clock.Now())
	if sess == nil {
		return nil
	}

	e.sess = sess
	e.startTickerLocked()
	log.Printf("🔄 Активная сессия восстановлена: case=%d", sess.CaseID)
	return e.snapshotLocked()
}

// Start открывает активный чат с анкетой. Вход только по коду: trim,
// точное сравнение. При неверном коде состояние не меняется, попытки
// не ограничены.
func (e *Engine) Start(caseData *models.Case, code string) (*Session, error) {
	if strings.TrimSpace(code) != AccessCode {
		return nil, ErrInvalidAccessCode
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Уже в этом чате - просто возвращаем состояние
	if e.sess != nil && e.sess.CaseID == caseData.ID {
		return e.snapshotLocked(), nil
	}

	// Переход в другой чат сбрасывает взведенные таймеры старого
	if e.sess != nil {
		e.cancelTimersLocked()
	}

	// Сохраненная сессия этой же анкеты продолжается без нового приветствия
	if restored := restoreSession(e.store, e.clientID, e.clock.Now()); restored != nil && restored.CaseID == caseData.ID {
		e.sess = restored
		e.startTickerLocked()
		log.Printf("🔄 Продолжение сохраненной сессии: case=%d", caseData.ID)
		return e.snapshotLocked(), nil
	}

	now := e.clock.Now()
	sess := &Session{
		CaseID:  caseData.ID,
		Case:    caseData,
		Profile: newProfile(caseData, now),
		Messages: []Message{{
			ID:        uuid.New().String(),
			Text:      fmt.Sprintf(scriptGreeting, displayName(caseData.Name)),
			Origin:    OriginBot,
			Kind:      KindText,
			Timestamp: now,
		}},
		State:   StateGreeting,
		Version: SnapshotVersion,
	}

	e.sess = sess
	e.saveLocked()
	e.startTickerLocked()

	log.Printf("🚀 Активный чат начат: case=%d (%s)", caseData.ID, caseData.Name)
	return e.snapshotLocked(), nil
}

// SendMessage добавляет сообщение пользователя и взводит сценарий.
// Для закрытого чата отправка отключена: список сообщений не меняется.
func (e *Engine) SendMessage(text string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return nil, ErrNoActiveSession
	}
	if e.sess.Closed() {
		return nil, ErrChatClosed
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	e.appendLocked(Message{
		ID:        uuid.New().String(),
		Text:      trimmed,
		Origin:    OriginUser,
		Kind:      KindText,
		Timestamp: e.clock.Now(),
	})
	e.sess.UserMessageCount++

	switch e.sess.UserMessageCount {
	case 1:
		// Две фазы задержки: "обдумывание", затем индикатор набора
		e.runSequenceLocked([]flowStep{
			{ThinkDelay, func() { e.sess.Typing = true }},
			{TypingDelay, func() {
				e.appendBotLocked(scriptPreferences)
				e.sess.Typing = false
				// Единственная точка, где собеседница становится онлайн
				e.sess.Profile.IsOnline = true
				e.sess.Profile.LastSeen = labelOnline
			}},
		})
	case 2:
		e.sess.State = StateNegotiating
		e.runSequenceLocked([]flowStep{
			{ThinkDelay, func() { e.sess.Typing = true }},
			{TypingDelay, func() {
				e.appendBotLocked(scriptTerms)
				e.sess.Typing = false
			}},
			{ConfirmDelay, func() { e.appendBotLocked(scriptConfirmation) }},
			{ApprovalDelay, func() {
				e.appendSystemLocked(scriptApproved)
				e.sess.State = StateAwaitingPhone
			}},
		})
	default:
		// Сценарий имеет ровно две точки ветвления; дальнейшие
		// сообщения сохраняются без специальной обработки
	}

	e.saveLocked()
	return e.snapshotLocked(), nil
}

// SubmitPhone валидирует и сохраняет номер, уведомляет операторов и
// запускает финальную цепочку до закрытия чата.
func (e *Engine) SubmitPhone(raw string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return nil, ErrNoActiveSession
	}
	if e.sess.Closed() {
		return nil, ErrChatClosed
	}
	if e.sess.State != StateAwaitingPhone {
		return nil, ErrPhoneNotExpected
	}

	phone := strings.TrimSpace(raw)
	if phone == "" || len(phone) < MinPhoneLength {
		return nil, ErrInvalidPhoneNumber
	}

	e.sess.PhoneNumber = phone
	e.sess.State = StateFinalNotice
	e.appendSystemLocked(fmt.Sprintf(scriptPhoneSuccess, phone))

	e.sink.SendAsync(telegram.NewLogMessage(
		notifyChatStarted, phone, e.sess.Profile.UniqueCode, e.clock.Now()))

	e.runSequenceLocked([]flowStep{
		{NoticeDelay, func() { e.appendSystemLocked(scriptFollowUp) }},
		{FinalNoticeDelay, func() { e.sess.FinalNoticeVisible = true }},
		{CloseDelay, func() {
			e.sess.State = StateClosed
			e.sess.Typing = false
			log.Printf("🔒 Чат закрыт: case=%d", e.sess.CaseID)
		}},
	})

	e.saveLocked()
	return e.snapshotLocked(), nil
}

// Snapshot возвращает копию текущей сессии либо nil
func (e *Engine) Snapshot() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return nil
	}
	return e.snapshotLocked()
}

// Suspend — возврат к списку чатов. Сессия не завершается: взведенные
// переходы продолжают работать в фоне и сохранять состояние.
func (e *Engine) Suspend() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess != nil {
		log.Printf("🔁 Возврат к списку чатов (сессия case=%d сохранена)", e.sess.CaseID)
	}
}

// End полностью завершает сессию: снимает все таймеры, чистит хранилище
// и возвращает движок в исходное состояние. Необратимо.
func (e *Engine) End() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return
	}

	e.cancelTimersLocked()
	discardSession(e.store, e.clientID)
	e.sess = nil

	log.Println("🧹 Активный чат полностью завершен")
}

// Active сообщает, есть ли у движка живая сессия
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess != nil
}

// --- внутренности, вызываются только под mu ---

func (e *Engine) appendLocked(m Message) {
	e.sess.Messages = append(e.sess.Messages, m)
}

func (e *Engine) appendBotLocked(text string) {
	e.appendLocked(Message{
		ID:        uuid.New().String(),
		Text:      text,
		Origin:    OriginBot,
		Kind:      KindText,
		Timestamp: e.clock.Now(),
	})
}

func (e *Engine) appendSystemLocked(text string) {
	e.appendLocked(Message{
		ID:        uuid.New().String(),
		Text:      text,
		Origin:    OriginSystem,
		Kind:      KindSystem,
		Timestamp: e.clock.Now(),
	})
}

// runSequenceLocked взводит линейную последовательность шагов. Каждый шаг
// проверяет поколение: шаги, пережившие End, не применяются.
func (e *Engine) runSequenceLocked(steps []flowStep) {
	e.scheduleStepLocked(e.generation, steps, 0)
}

func (e *Engine) scheduleStepLocked(gen uint64, steps []flowStep, i int) {
	if i >= len(steps) {
		return
	}

	timer := e.clock.AfterFunc(steps[i].delay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		if gen != e.generation || e.sess == nil {
			return
		}

		steps[i].action()
		e.saveLocked()
		e.scheduleStepLocked(gen, steps, i+1)
	})

	e.timers = append(e.timers, timer)
}

func (e *Engine) cancelTimersLocked() {
	e.generation++
	for _, t := range e.timers {
		t.Stop()
	}
	e.timers = nil

	if e.ticker != nil {
		e.ticker.Stop()
		close(e.done)
		e.ticker = nil
		e.done = nil
	}
}

func (e *Engine) saveLocked() {
	e.sess.LastSaved = e.clock.Now()
	saveSession(e.store, e.clientID, e.sess)
}

// startTickerLocked запускает периодическое фоновое сохранение,
// ограничивающее потерю данных при жестком завершении
func (e *Engine) startTickerLocked() {
	if e.ticker != nil {
		return
	}

	e.ticker = e.clock.NewTicker(SaveInterval)
	e.done = make(chan struct{})

	go func(ticker Ticker, done chan struct{}) {
		for {
			select {
			case <-done:
				return
			case <-ticker.Chan():
				e.mu.Lock()
				if e.sess != nil {
					e.saveLocked()
				}
				e.mu.Unlock()
			}
		}
	}(e.ticker, e.done)
}

func (e *Engine) snapshotLocked() *Session {
	copySess := *e.sess
	copySess.Messages = make([]Message, len(e.sess.Messages))
	copy(copySess.Messages, e.sess.Messages)
	return &copySess
}
