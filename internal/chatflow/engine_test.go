package chatflow

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/delbarteam/delbar-api/internal/models"
	"github.com/delbarteam/delbar-api/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testCase() *models.Case {
	return &models.Case{
		ID:       42,
		Name:     "کیس شماره 42 - سارا احمدی",
		Image:    "https://example.com/42.jpg",
		Location: "تهران",
		Age:      27,
		Status:   models.CaseStatusActive,
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock, *fakeSink, *storage.Memory) {
	t.Helper()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	sink := &fakeSink{}
	store := storage.NewMemory()
	engine := NewEngine("11111111-2222-3333-4444-555555555555", store, sink, clock)

	t.Cleanup(engine.End)
	return engine, clock, sink, store
}

// advanceToPhoneInput проводит сессию по сценарию до шага ввода телефона
func advanceToPhoneInput(t *testing.T, engine *Engine, clock *fakeClock) {
	t.Helper()

	_, err := engine.SendMessage("سلام")
	require.NoError(t, err)
	clock.Advance(ThinkDelay + TypingDelay)

	_, err = engine.SendMessage("باشه")
	require.NoError(t, err)
	clock.Advance(ThinkDelay + TypingDelay + ConfirmDelay + ApprovalDelay)

	require.Equal(t, StateAwaitingPhone, engine.Snapshot().State)
}

func TestStartRejectsInvalidAccessCode(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	for _, code := range []string{"", "wrong", "cod_4961", "Cod_4961x"} {
		_, err := engine.Start(testCase(), code)
		assert.ErrorIs(t, err, ErrInvalidAccessCode, "code %q", code)
	}

	// Неудачные попытки не оставляют следов
	assert.Nil(t, engine.Snapshot())

	// Код принимается с любым обрамлением пробелами
	session, err := engine.Start(testCase(), "  Cod_4961  ")
	require.NoError(t, err)
	require.NotNil(t, session)
}

func TestStartCreatesGreeting(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	session, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	require.Equal(t, StateGreeting, session.State)
	require.Len(t, session.Messages, 1)

	greeting := session.Messages[0]
	assert.Equal(t, OriginBot, greeting.Origin)
	// Имя подставляется без номера кейса
	assert.Contains(t, greeting.Text, "کیس شماره 42")
	assert.True(t, strings.HasPrefix(greeting.Text, "سلام!"))

	assert.True(t, session.Profile.Verified)
	assert.NotEmpty(t, session.Profile.UniqueCode)
	assert.True(t, strings.HasPrefix(session.Profile.UniqueCode, "C"))
}

func TestStartIsIdempotentForSameCase(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	first, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	second, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	// Повторный вход не добавляет второе приветствие
	assert.Equal(t, len(first.Messages), len(second.Messages))
	assert.Equal(t, first.Messages[0].ID, second.Messages[0].ID)
}

func TestFirstMessageTiming(t *testing.T) {
	engine, clock, _, _ := newTestEngine(t)
	_, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	_, err = engine.SendMessage("سلام خوبی؟")
	require.NoError(t, err)

	// До истечения паузы обдумывания ничего не происходит
	clock.Advance(ThinkDelay - time.Second)
	session := engine.Snapshot()
	assert.False(t, session.Typing)
	assert.Len(t, session.Messages, 2)

	// Пауза вышла - включается индикатор набора
	clock.Advance(time.Second)
	session = engine.Snapshot()
	assert.True(t, session.Typing)
	assert.Len(t, session.Messages, 2)

	// После индикатора приходит ответ и профиль становится онлайн
	clock.Advance(TypingDelay)
	session = engine.Snapshot()
	assert.False(t, session.Typing)
	require.Len(t, session.Messages, 3)
	assert.Equal(t, scriptPreferences, session.Messages[2].Text)
	assert.Equal(t, OriginBot, session.Messages[2].Origin)
	assert.True(t, session.Profile.IsOnline)
	assert.Equal(t, labelOnline, session.Profile.LastSeen)
}

func TestSecondMessageChain(t *testing.T) {
	engine, clock, _, _ := newTestEngine(t)
	_, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	_, err = engine.SendMessage("سلام")
	require.NoError(t, err)
	clock.Advance(ThinkDelay + TypingDelay)

	session, err := engine.SendMessage("رابطه دوستانه")
	require.NoError(t, err)
	assert.Equal(t, StateNegotiating, session.State)

	// Условия
	clock.Advance(ThinkDelay + TypingDelay)
	session = engine.Snapshot()
	require.Len(t, session.Messages, 5)
	assert.Equal(t, scriptTerms, session.Messages[4].Text)

	// Подтверждение
	clock.Advance(ConfirmDelay)
	session = engine.Snapshot()
	require.Len(t, session.Messages, 6)
	assert.Equal(t, scriptConfirmation, session.Messages[5].Text)
	assert.Equal(t, StateNegotiating, session.State)

	// Одобрение и запрос телефона
	clock.Advance(ApprovalDelay)
	session = engine.Snapshot()
	require.Len(t, session.Messages, 7)
	assert.Equal(t, scriptApproved, session.Messages[6].Text)
	assert.Equal(t, OriginSystem, session.Messages[6].Origin)
	assert.Equal(t, StateAwaitingPhone, session.State)
	assert.True(t, session.PhoneInputVisible())
}

func TestThirdMessageHasNoScriptedReply(t *testing.T) {
	engine, clock, _, _ := newTestEngine(t)
	_, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	for _, text := range []string{"اول", "دوم", "سوم"} {
		_, err = engine.SendMessage(text)
		require.NoError(t, err)
	}
	countBefore := len(engine.Snapshot().Messages)

	// Третье сообщение не взводит собственных ответов: прибавка за это
	// время - только реплики первых двух веток
	clock.Advance(ThinkDelay + TypingDelay + ConfirmDelay + ApprovalDelay)
	session := engine.Snapshot()
	assert.Equal(t, countBefore+4, len(session.Messages))
}

func TestSendMessageValidation(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	_, err := engine.SendMessage("привет")
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, err = engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	_, err = engine.SendMessage("   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSubmitPhoneGuards(t *testing.T) {
	engine, clock, _, _ := newTestEngine(t)
	_, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	// До одобрения телефон не принимается
	_, err = engine.SubmitPhone("09121234567")
	assert.ErrorIs(t, err, ErrPhoneNotExpected)

	advanceToPhoneInput(t, engine, clock)

	_, err = engine.SubmitPhone("0912")
	assert.ErrorIs(t, err, ErrInvalidPhoneNumber)

	_, err = engine.SubmitPhone("   ")
	assert.ErrorIs(t, err, ErrInvalidPhoneNumber)
}

func TestPhoneFinalization(t *testing.T) {
	engine, clock, sink, _ := newTestEngine(t)
	_, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	advanceToPhoneInput(t, engine, clock)

	session, err := engine.SubmitPhone(" 09121234567 ")
	require.NoError(t, err)

	assert.Equal(t, StateFinalNotice, session.State)
	assert.Equal(t, "09121234567", session.PhoneNumber)
	last := session.Messages[len(session.Messages)-1]
	assert.Equal(t, fmt.Sprintf(scriptPhoneSuccess, "09121234567"), last.Text)
	assert.Equal(t, OriginSystem, last.Origin)

	// Оператор получает ровно одно уведомление с номером
	msgs := sink.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "#New_Log")
	assert.Contains(t, msgs[0], "09121234567")
	assert.Contains(t, msgs[0], notifyChatStarted)

	// Напоминание о созвоне
	clock.Advance(NoticeDelay)
	session = engine.Snapshot()
	assert.Equal(t, scriptFollowUp, session.Messages[len(session.Messages)-1].Text)
	assert.False(t, session.FinalNoticeVisible)

	// Финальное предупреждение
	clock.Advance(FinalNoticeDelay)
	session = engine.Snapshot()
	assert.True(t, session.FinalNoticeVisible)
	assert.False(t, session.Closed())

	// Закрытие
	clock.Advance(CloseDelay)
	session = engine.Snapshot()
	assert.True(t, session.Closed())
	assert.Equal(t, StateClosed, session.State)

	// Закрытый чат не принимает ни сообщений, ни номера
	countBefore := len(session.Messages)
	_, err = engine.SendMessage("الو؟")
	assert.ErrorIs(t, err, ErrChatClosed)
	_, err = engine.SubmitPhone("09121234567")
	assert.ErrorIs(t, err, ErrChatClosed)
	assert.Equal(t, countBefore, len(engine.Snapshot().Messages))
}

func TestEndCancelsScheduledSteps(t *testing.T) {
	engine, clock, _, store := newTestEngine(t)
	_, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	_, err = engine.SendMessage("سلام")
	require.NoError(t, err)

	engine.End()
	assert.Nil(t, engine.Snapshot())

	// Взведенные шаги не оживляют завершенную сессию
	clock.Advance(ThinkDelay + TypingDelay)
	assert.Nil(t, engine.Snapshot())

	for _, key := range sessionKeys("11111111-2222-3333-4444-555555555555") {
		_, ok, err := store.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, "key %s should be removed", key)
	}
}

func TestMessageOrderSurvivesRestore(t *testing.T) {
	clientID := "11111111-2222-3333-4444-555555555555"
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	sink := &fakeSink{}
	store := storage.NewMemory()

	engine := NewEngine(clientID, store, sink, clock)
	_, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	_, err = engine.SendMessage("سلام")
	require.NoError(t, err)
	clock.Advance(ThinkDelay + TypingDelay)

	saved := engine.Snapshot()
	engine.cancelAndForget()

	// Новый движок того же клиента видит ту же сессию
	restoredEngine := NewEngine(clientID, store, sink, clock)
	defer restoredEngine.End()

	restored := restoredEngine.Resume()
	require.NotNil(t, restored)

	require.Equal(t, len(saved.Messages), len(restored.Messages))
	for i := range saved.Messages {
		assert.Equal(t, saved.Messages[i].ID, restored.Messages[i].ID)
		assert.Equal(t, saved.Messages[i].Text, restored.Messages[i].Text)
		assert.Equal(t, saved.Messages[i].Origin, restored.Messages[i].Origin)
		// Временные метки переживают сериализацию с точностью до миллисекунды
		assert.Equal(t, saved.Messages[i].Timestamp.UnixMilli(), restored.Messages[i].Timestamp.UnixMilli())
	}

	assert.Equal(t, saved.State, restored.State)
	assert.Equal(t, saved.Profile.UniqueCode, restored.Profile.UniqueCode)
	assert.Equal(t, saved.UserMessageCount, restored.UserMessageCount)
}

func TestSessionRetention(t *testing.T) {
	clientID := "11111111-2222-3333-4444-555555555555"
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newSession := func(store *storage.Memory, clock *fakeClock) {
		engine := NewEngine(clientID, store, &fakeSink{}, clock)
		_, err := engine.Start(testCase(), AccessCode)
		require.NoError(t, err)
		engine.cancelAndForget()
	}

	t.Run("шестидневная сессия восстанавливается", func(t *testing.T) {
		store := storage.NewMemory()
		clock := newFakeClock(start)
		newSession(store, clock)

		clock.Advance(6 * 24 * time.Hour)
		engine := NewEngine(clientID, store, &fakeSink{}, clock)
		defer engine.End()

		assert.NotNil(t, engine.Resume())
	})

	t.Run("восьмидневная сессия отбрасывается", func(t *testing.T) {
		store := storage.NewMemory()
		clock := newFakeClock(start)
		newSession(store, clock)

		clock.Advance(8 * 24 * time.Hour)
		engine := NewEngine(clientID, store, &fakeSink{}, clock)
		defer engine.End()

		assert.Nil(t, engine.Resume())

		// Просроченный снимок удален из хранилища
		_, ok, err := store.Get(primaryKey + ":" + clientID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPeriodicSaveRefreshesSnapshot(t *testing.T) {
	engine, clock, _, store := newTestEngine(t)

	_, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)

	key := primaryKey + ":11111111-2222-3333-4444-555555555555"
	before, ok, err := store.Get(key)
	require.NoError(t, err)
	require.True(t, ok)

	// Само по себе течение времени снимок не перезаписывает
	clock.Advance(time.Second)
	unchanged, _, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, before, unchanged)

	clock.Tick()

	// Фоновое сохранение перезаписывает снимок со свежей меткой
	require.Eventually(t, func() bool {
		raw, ok, err := store.Get(key)
		return err == nil && ok && raw != before
	}, time.Second, 5*time.Millisecond)

	raw, _, err := store.Get(key)
	require.NoError(t, err)
	sess, err := decodeSession([]byte(raw), clock.Now())
	require.NoError(t, err)
	assert.Equal(t, clock.Now().UnixMilli(), sess.LastSaved.UnixMilli())
}

func TestSwitchingCaseResetsSession(t *testing.T) {
	engine, clock, _, _ := newTestEngine(t)

	_, err := engine.Start(testCase(), AccessCode)
	require.NoError(t, err)
	_, err = engine.SendMessage("سلام")
	require.NoError(t, err)

	other := testCase()
	other.ID = 77
	other.Name = "کیس شماره 77 - مریم کریمی"

	session, err := engine.Start(other, AccessCode)
	require.NoError(t, err)
	assert.Equal(t, 77, session.CaseID)
	require.Len(t, session.Messages, 1)

	// Таймеры старой сессии не дописывают реплики в новую
	clock.Advance(ThinkDelay + TypingDelay)
	assert.Len(t, engine.Snapshot().Messages, 1)
	assert.False(t, engine.Snapshot().Typing)
}

// cancelAndForget снимает таймеры, не трогая хранилище. Имитация
// жесткого завершения процесса в тестах восстановления.
func (e *Engine) cancelAndForget() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimersLocked()
	e.sess = nil
}
