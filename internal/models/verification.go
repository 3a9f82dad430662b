package models

import "time"

// Статусы заявки на проверку
const (
	VerificationStatusApproved = "approved"
	VerificationStatusRejected = "rejected"
)

// VerificationRequest представляет заявку на подтверждение личности
type VerificationRequest struct {
	ID          int       `json:"id"`
	CaseID      int       `json:"case_id"`
	FullName    string    `json:"full_name"`
	NationalID  string    `json:"national_id"`
	PhoneNumber string    `json:"phone_number"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
