package models

import "time"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusFlagged  ReviewStatus = "flagged"
)

// FakeScoreThreshold is the score at or above which a review is treated as suspected fake.
const FakeScoreThreshold = 0.7

type Review struct {
	ID          string       `json:"id" db:"id"`
	UserID      string       `json:"user_id" db:"user_id"`
	ProductName string       `json:"product_name" db:"product_name"`
	Platform    string       `json:"platform" db:"platform"`
	Rating      int          `json:"rating" db:"rating"`
	Content     string       `json:"content" db:"content"`
	Status      ReviewStatus `json:"status" db:"status"` // enum: pending, approved, flagged
	FakeScore   float64      `json:"fake_score" db:"fake_score"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// SuspectedFake reports whether the detection score crossed the flagging threshold.
func (r Review) SuspectedFake() bool {
	return r.FakeScore >= FakeScoreThreshold
}
