package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite представляет запись избранной анкеты.
// CachedCase — последний удачно загруженный снимок анкеты: при недоступности
// базы список чатов строится по нему, а не выкидывает запись.
type Favorite struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	CaseID     int       `json:"case_id"`
	CachedCase *Case     `json:"cached_case,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChatRoom представляет элемент списка чатов пользователя
type ChatRoom struct {
	ID              int        `json:"id"`
	Case            *Case      `json:"case_data"`
	LastMessage     string     `json:"last_message,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	UnreadCount     int        `json:"unread_count"`
}
