package chatflow

import "time"

// Clock абстрагирует таймеры движка, чтобы тесты могли управлять временем.
// В продакшене используется системное время.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	NewTicker(d time.Duration) Ticker
}

// Timer — отменяемый одноразовый таймер
type Timer interface {
	Stop() bool
}

// Ticker — периодический таймер
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type realClock struct{}

// NewRealClock возвращает Clock на системном времени
func NewRealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (rt *realTicker) Chan() <-chan time.Time { return rt.t.C }
func (rt *realTicker) Stop()                  { rt.t.Stop() }
