// Package storage предоставляет key-value хранилище снимков клиентского
// состояния. Без транзакций и без гарантий размера — только get/set/remove.
package storage

// Store описывает key-value хранилище строк
type Store interface {
	// Get возвращает значение и признак его наличия
	Get(key string) (string, bool, error)
	// Set записывает значение по ключу, перезаписывая существующее
	Set(key, value string) error
	// Remove удаляет ключ; отсутствие ключа ошибкой не считается
	Remove(key string) error
}
