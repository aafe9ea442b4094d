package repository

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
)

// ClaimWebhookEvent inserts (provider, eventID) into the idempotency set. It
// reports false without error when the pair was claimed before.
func (s *Store) ClaimWebhookEvent(ctx context.Context, provider, eventID string) (bool, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	err := db.Create(&models.WebhookEvent{Provider: provider, EventID: eventID}).Error
	if err == nil {
		return true, nil
	}
	if isUniqueViolation(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to claim webhook event: %w", err)
}

func (s *Store) CreateWebhookLog(ctx context.Context, entry *models.WebhookLog) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	if err := db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create webhook log: %w", err)
	}
	return nil
}

func (s *Store) MarkWebhookLog(ctx context.Context, id uint, ok bool, errText string) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	err := db.Model(&models.WebhookLog{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processed_ok": ok,
		"error_text":   errText,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to mark webhook log: %w", err)
	}
	return nil
}
