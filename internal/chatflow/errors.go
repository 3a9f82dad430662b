package chatflow

import "errors"

// Ошибки ядра чата. Все пользовательские: view деградирует к безопасному
// состоянию, ни одна из них не приводит к фатальному экрану.
var (
	// ErrInvalidAccessCode — введен неверный код входа в чат
	ErrInvalidAccessCode = errors.New("неверный код входа в чат")
	// ErrInvalidPhoneNumber — номер телефона не прошел валидацию
	ErrInvalidPhoneNumber = errors.New("невалидный номер телефона")
	// ErrChatClosed — чат закрыт, отправка сообщений отключена
	ErrChatClosed = errors.New("чат закрыт")
	// ErrEmptyMessage — пустое сообщение после trim
	ErrEmptyMessage = errors.New("пустое сообщение")
	// ErrNoActiveSession — операция требует активной сессии
	ErrNoActiveSession = errors.New("нет активной сессии")
	// ErrPhoneNotExpected — ввод телефона доступен только в состоянии AwaitingPhone
	ErrPhoneNotExpected = errors.New("ввод телефона сейчас не ожидается")
)
