package chatflow

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/delbarteam/delbar-api/internal/storage"
)

// Ключи хранилища. Исходная версия дублировала снимок под четырьмя
// ключами; теперь авторитетен один ключ с контрольной суммой, но
// резервные ключи по-прежнему зачищаются при сбросе сессии.
const (
	primaryKey = "PERSISTENT_ACTIVE_CHAT"
	backupKey  = "BACKUP_ACTIVE_CHAT"
	safeKey    = "SAFE_ACTIVE_CHAT"
	legacyKey  = "PROTECTED_CHAT_STATE"
)

func sessionKeys(clientID string) []string {
	return []string{
		primaryKey + ":" + clientID,
		backupKey + ":" + clientID,
		safeKey + ":" + clientID,
		legacyKey + ":" + clientID,
	}
}

// envelope оборачивает снимок контрольной суммой, проверяемой при чтении
type envelope struct {
	Checksum string          `json:"checksum"`
	Payload  json.RawMessage `json:"payload"`
}

func checksum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// saveSession сериализует сессию и записывает под авторитетный ключ.
// Best-effort: ошибка записи логируется, повторов нет.
func saveSession(store storage.Store, clientID string, s *Session) {
	payload, err := json.Marshal(s)
	if err != nil {
		log.Printf("❌ Ошибка сериализации сессии: %v", err)
		return
	}

	data, err := json.Marshal(envelope{
		Checksum: checksum(payload),
		Payload:  payload,
	})
	if err != nil {
		log.Printf("❌ Ошибка сериализации конверта сессии: %v", err)
		return
	}

	if err := store.Set(primaryKey+":"+clientID, string(data)); err != nil {
		log.Printf("⚠️ Ошибка сохранения сессии: %v", err)
	}
}

// restoreSession читает снимок и возвращает сессию либо nil.
// Любой сбой чтения трактуется как отсутствие сессии; протухший или
// поврежденный снимок удаляется вместе с резервными ключами.
func restoreSession(store storage.Store, clientID string, now time.Time) *Session {
	raw, ok, err := store.Get(primaryKey + ":" + clientID)
	if err != nil {
		log.Printf("⚠️ Ошибка чтения сессии, начинаем с чистого состояния: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	sess, err := decodeSession([]byte(raw), now)
	if err != nil {
		log.Printf("🗑️ Снимок сессии отброшен: %v", err)
		discardSession(store, clientID)
		return nil
	}

	return sess
}

func decodeSession(raw []byte, now time.Time) (*Session, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("поврежденный конверт: %w", err)
	}

	if checksum(env.Payload) != env.Checksum {
		return nil, fmt.Errorf("контрольная сумма не сошлась")
	}

	var sess Session
	if err := json.Unmarshal(env.Payload, &sess); err != nil {
		return nil, fmt.Errorf("поврежденный снимок: %w", err)
	}

	if now.Sub(sess.LastSaved) > SessionRetention {
		return nil, fmt.Errorf("снимок старше %v", SessionRetention)
	}

	return &sess, nil
}

// discardSession удаляет все ключи сессии клиента
func discardSession(store storage.Store, clientID string) {
	for _, key := range sessionKeys(clientID) {
		if err := store.Remove(key); err != nil {
			log.Printf("⚠️ Ошибка удаления ключа %s: %v", key, err)
		}
	}
}
