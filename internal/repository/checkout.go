package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateCheckoutSession stores the session. A session with the same event id
// already present is kept as is and no error is returned.
func (s *Store) CreateCheckoutSession(ctx context.Context, session *models.CheckoutSession) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(session).Error
	if err != nil {
		return fmt.Errorf("failed to create checkout session: %w", err)
	}
	return nil
}

func (s *Store) FindCheckoutSession(ctx context.Context, eventID string) (*models.CheckoutSession, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var session models.CheckoutSession
	err := db.Where("event_id = ?", eventID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCheckoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}
	return &session, nil
}
