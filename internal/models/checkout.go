package models

import "time"

// CheckoutSession binds an unguessable event id to a user and plan before
// payment. It is never mutated or deleted.
type CheckoutSession struct {
	EventID     string    `gorm:"primaryKey;size:128" json:"event_id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	PlanID      string    `gorm:"size:50;not null" json:"plan_id"`
	Provider    string    `gorm:"size:50;not null" json:"provider"`
	CheckoutURL string    `gorm:"type:text" json:"checkout_url"`
	CreatedAt   time.Time `json:"created_at"`
}
