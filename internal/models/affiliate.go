package models

import "time"

type Affiliate struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Code           string    `json:"code" db:"code"`
	CommissionRate float64   `json:"commission_rate" db:"commission_rate"`
	TotalEarnings  float64   `json:"total_earnings" db:"total_earnings"`
	PayoutEmail    string    `json:"payout_email" db:"payout_email"`
	Status         string    `json:"status" db:"status"` // enum: pending, active, suspended
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
