package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent rows exist only to claim (provider, event_id) exactly once.
type WebhookEvent struct {
	ID        uint      `gorm:"primaryKey"`
	Provider  string    `gorm:"size:50;not null;uniqueIndex:idx_webhook_events_provider_event"`
	EventID   string    `gorm:"size:128;not null;uniqueIndex:idx_webhook_events_provider_event"`
	CreatedAt time.Time
}

// WebhookLog is the forensic trail of every delivery, duplicates and
// malformed requests included. ProcessedOK is nil while pending.
type WebhookLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Provider    string         `gorm:"size:50;not null;index" json:"provider"`
	EventID     string         `gorm:"size:128;index" json:"event_id"`
	EventType   string         `gorm:"size:64" json:"event_type"`
	RawPayload  datatypes.JSON `gorm:"type:jsonb" json:"raw_payload"`
	ProcessedOK *bool          `json:"processed_ok"`
	ErrorText   string         `gorm:"type:text" json:"error_text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
