package models

import "time"

// StaffMember links a STAFF account to its internal position.
type StaffMember struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	Position   string     `json:"position" db:"position"`
	Department string     `json:"department" db:"department"`
	Active     bool       `json:"active" db:"active"`
	HiredAt    *time.Time `json:"hired_at,omitempty" db:"hired_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
