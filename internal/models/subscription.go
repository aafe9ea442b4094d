package models

import "time"

const (
	SubscriptionActive   = "active"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"

	// SubscriptionNone is reported when a user has no subscription row.
	// It is never stored.
	SubscriptionNone = "none"
)

// Subscription is the entitlement row of a user. Several rows may exist for
// one user; the most recently updated one is authoritative.
type Subscription struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             int64      `gorm:"not null;index:idx_subscriptions_user_updated,priority:1" json:"user_id"`
	PlanID             string     `gorm:"size:50;not null" json:"plan_id"`
	Status             string     `gorm:"size:20;not null" json:"status"`
	CurrentPeriodStart *time.Time `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end"`
	Provider           string     `gorm:"size:50" json:"provider"`
	ProviderReference  string     `gorm:"size:255" json:"provider_reference"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `gorm:"index:idx_subscriptions_user_updated,priority:2,sort:desc" json:"updated_at"`
}
