package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"gorm.io/gorm"
)

// SubscriptionWriter is the view of the store available inside a per-user
// locked transaction.
type SubscriptionWriter interface {
	LatestSubscription(userID int64) (*models.Subscription, error)
	SaveSubscription(sub *models.Subscription) error
	CreatePayment(payment *models.Payment) error
}

// ForUser returns a GORM scope that filters by user_id.
func ForUser(userID int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// LatestSubscription returns the most recently updated subscription of the
// user, or nil when the user has none.
func (s *Store) LatestSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	return latestSubscription(db, userID)
}

func latestSubscription(db *gorm.DB, userID int64) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.Scopes(ForUser(userID)).Order("updated_at DESC").First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

// SubscriptionsEndingBetween lists subscriptions that still grant access and
// whose window closes inside [from, to].
func (s *Store) SubscriptionsEndingBetween(ctx context.Context, from, to time.Time) ([]models.Subscription, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var subs []models.Subscription
	err := db.Where("status IN ? AND current_period_end BETWEEN ? AND ?",
		[]string{models.SubscriptionActive, models.SubscriptionCanceled}, from, to).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}
	return subs, nil
}

// WithUserLock runs fn in one transaction that holds a transaction-scoped
// advisory lock on userID. Concurrent callers for the same user are
// serialised; the lock is released on commit or rollback.
func (s *Store) WithUserLock(ctx context.Context, userID int64, fn func(SubscriptionWriter) error) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", userID).Error; err != nil {
			return fmt.Errorf("failed to lock user %d: %w", userID, err)
		}
		return fn(&txWriter{db: tx})
	})
}

type txWriter struct {
	db *gorm.DB
}

func (w *txWriter) LatestSubscription(userID int64) (*models.Subscription, error) {
	return latestSubscription(w.db, userID)
}

func (w *txWriter) SaveSubscription(sub *models.Subscription) error {
	if err := w.db.Save(sub).Error; err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

func (w *txWriter) CreatePayment(payment *models.Payment) error {
	if err := w.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}
