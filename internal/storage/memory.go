package storage

import "sync"

// Memory — хранилище в памяти. Используется в тестах и как деградация,
// когда база данных недоступна.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory создает новое хранилище в памяти
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
