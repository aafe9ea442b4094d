package models

import "time"

const (
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// Payment is an append-only record of one processed payment attempt.
type Payment struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            int64      `gorm:"not null;index" json:"user_id"`
	Provider          string     `gorm:"size:50;not null" json:"provider"`
	ProviderPaymentID string     `gorm:"size:255;not null;index" json:"provider_payment_id"`
	Status            string     `gorm:"size:20;not null" json:"status"`
	Amount            int64      `gorm:"not null" json:"amount"`
	Currency          string     `gorm:"size:3;not null" json:"currency"`
	PeriodStart       *time.Time `json:"period_start"`
	PeriodEnd         *time.Time `json:"period_end"`
	CreatedAt         time.Time  `json:"created_at"`
}
