package chatflow

import (
	"sync"

	"github.com/delbarteam/delbar-api/internal/storage"
)

// Manager хранит движки сессий по клиентам. У клиента в один момент
// времени не больше одной активной сессии — это продуктовое ограничение.
type Manager struct {
	mu      sync.RWMutex
	engines map[string]*Engine

	store storage.Store
	sink  Sink
	clock Clock
}

// NewManager создает менеджер сессий
func NewManager(store storage.Store, sink Sink, clock Clock) *Manager {
	return &Manager{
		engines: make(map[string]*Engine),
		store:   store,
		sink:    sink,
		clock:   clock,
	}
}

// Engine возвращает движок клиента, создавая его при первом обращении
func (m *Manager) Engine(clientID string) *Engine {
	m.mu.RLock()
	engine, ok := m.engines[clientID]
	m.mu.RUnlock()

	if ok {
		return engine
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if engine, ok = m.engines[clientID]; ok {
		return engine
	}

	engine = NewEngine(clientID, m.store, m.sink, m.clock)
	m.engines[clientID] = engine
	return engine
}

// Remove выкидывает движок клиента из реестра. Вызывается после End,
// чтобы реестр не рос бесконечно.
func (m *Manager) Remove(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.engines, clientID)
}
