package chatflow

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delbarteam/delbar-api/internal/storage"
)

func sampleSession(now time.Time) *Session {
	return &Session{
		CaseID: 42,
		Case:   testCase(),
		Profile: Profile{
			ID:         "42",
			Name:       "کیس شماره 42 - سارا احمدی",
			UniqueCode: "C4821-093",
			Verified:   true,
		},
		Messages: []Message{
			{ID: "m1", Text: "سلام", Origin: OriginBot, Kind: KindText, Timestamp: now},
			{ID: "m2", Text: "سلام خوبی؟", Origin: OriginUser, Kind: KindText, Timestamp: now.Add(time.Minute)},
		},
		UserMessageCount: 1,
		State:            StateGreeting,
		LastSaved:        now,
		Version:          SnapshotVersion,
	}
}

func TestSaveRestoreRoundtrip(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	saveSession(store, "client-1", sampleSession(now))

	restored := restoreSession(store, "client-1", now.Add(time.Hour))
	require.NotNil(t, restored)

	assert.Equal(t, 42, restored.CaseID)
	assert.Equal(t, StateGreeting, restored.State)
	assert.Equal(t, SnapshotVersion, restored.Version)
	require.Len(t, restored.Messages, 2)
	assert.Equal(t, "m1", restored.Messages[0].ID)
	assert.Equal(t, now.UnixMilli(), restored.Messages[0].Timestamp.UnixMilli())
}

func TestRestoreMissingSession(t *testing.T) {
	store := storage.NewMemory()
	assert.Nil(t, restoreSession(store, "client-1", time.Now()))
}

func TestRestoreRejectsCorruptedChecksum(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	payload, err := json.Marshal(sampleSession(now))
	require.NoError(t, err)

	// Конверт с чужой контрольной суммой
	data, err := json.Marshal(envelope{
		Checksum: "deadbeef",
		Payload:  payload,
	})
	require.NoError(t, err)
	require.NoError(t, store.Set(primaryKey+":client-1", string(data)))

	// Резервные ключи прошлых версий тоже должны зачиститься
	require.NoError(t, store.Set(backupKey+":client-1", "stale"))
	require.NoError(t, store.Set(legacyKey+":client-1", "stale"))

	assert.Nil(t, restoreSession(store, "client-1", now))

	for _, key := range sessionKeys("client-1") {
		_, ok, err := store.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, "key %s should be removed", key)
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Set(primaryKey+":client-1", "{not json"))

	assert.Nil(t, restoreSession(store, "client-1", time.Now()))

	_, ok, err := store.Get(primaryKey + ":client-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotWireFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := sampleSession(now)
	sess.State = StateAwaitingPhone

	data, err := json.Marshal(sess)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))

	// Производные поля снимка согласованы с тегом состояния
	assert.Equal(t, float64(3), wire["chat_step"])
	assert.Equal(t, true, wire["show_phone_input"])
	assert.Equal(t, false, wire["chat_closed"])
	assert.Equal(t, "3.0", wire["version"])
	assert.Equal(t, float64(now.UnixMilli()), wire["timestamp"])
}

func TestRestoreClearsTypingForClosedChat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := sampleSession(now)
	sess.State = StateClosed
	sess.Typing = true

	data, err := json.Marshal(sess)
	require.NoError(t, err)

	var restored Session
	require.NoError(t, json.Unmarshal(data, &restored))

	// Закрытый чат не может печатать
	assert.True(t, restored.Closed())
	assert.False(t, restored.Typing)
}

func TestFlowStateSteps(t *testing.T) {
	steps := map[FlowState]int{
		StateIdle:          0,
		StateGreeting:      1,
		StateNegotiating:   2,
		StateAwaitingPhone: 3,
		StateFinalNotice:   4,
		StateClosed:        5,
	}
	for state, step := range steps {
		assert.Equal(t, step, state.Step())
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "کیس شماره 42", displayName("کیس شماره 42 - سارا احمدی"))
	assert.Equal(t, "سارا", displayName("سارا"))
}
