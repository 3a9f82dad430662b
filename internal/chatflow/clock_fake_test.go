package chatflow

import (
	"sync"
	"time"
)

// fakeClock — управляемые часы для тестов сценария. Advance передвигает
// время и срабатывает подошедшие таймеры в порядке дедлайнов, включая
// таймеры, взведенные внутри колбэков.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*fakeTimer
	tickers []*fakeTicker
}

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Time
	fn       func()
	fired    bool
	stopped  bool
}

type fakeTicker struct {
	ch chan time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{
		clock:    c,
		deadline: c.now.Add(d),
		fn:       f,
	}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

// Tick доставляет тик всем взведенным тикерам. Канал небуферизованный:
// возврат из Tick гарантирует, что получатель тик принял. Вызывать
// можно только пока получатели живы.
func (c *fakeClock) Tick() {
	c.mu.Lock()
	tickers := append([]*fakeTicker(nil), c.tickers...)
	now := c.now
	c.mu.Unlock()

	for _, t := range tickers {
		t.ch <- now
	}
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)

	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.deadline.After(target) {
				continue
			}
			if next == nil || t.deadline.Before(next.deadline) {
				next = t
			}
		}
		if next == nil {
			break
		}

		c.now = next.deadline
		next.fired = true
		fn := next.fn

		// Колбэк может взводить новые таймеры - отпускаем блокировку
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}

	c.now = target
	c.mu.Unlock()
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (t *fakeTicker) Chan() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {}

// fakeSink собирает отправленные уведомления синхронно
type fakeSink struct {
	mu   sync.Mutex
	msgs []string
}

func (s *fakeSink) SendAsync(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, text)
}

func (s *fakeSink) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.msgs...)
}
