package models

import (
	"encoding/json"
	"time"
)

// Статусы анкеты
const (
	CaseStatusActive   = "active"
	CaseStatusReserved = "reserved"
	CaseStatusDeleted  = "deleted"
)

// Case представляет анкету (кейс) в каталоге
type Case struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	Image             string          `json:"image"`
	Location          string          `json:"location"`
	Category          string          `json:"category"`
	Price             int             `json:"price"`
	Age               int             `json:"age"`
	Height            string          `json:"height,omitempty"`
	SkinColor         string          `json:"skin_color,omitempty"`
	BodyType          string          `json:"body_type,omitempty"`
	PersonalityTraits []string        `json:"personality_traits,omitempty"`
	ExperienceLevel   string          `json:"experience_level,omitempty"`
	Description       string          `json:"description"`
	Status            string          `json:"status"`
	Verified          bool            `json:"verified"`
	Online            bool            `json:"online"`
	IsPersistent      bool            `json:"is_persistent"`
	Details           json.RawMessage `json:"details,omitempty"`
	Comments          []CaseComment   `json:"comments,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CaseComment представляет отзыв под анкетой
type CaseComment struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
	Date    string `json:"date"`
}

// ValidCaseStatus проверяет допустимость статуса анкеты
func ValidCaseStatus(status string) bool {
	switch status {
	case CaseStatusActive, CaseStatusReserved, CaseStatusDeleted:
		return true
	}
	return false
}
