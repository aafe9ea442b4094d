package repository

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"gorm.io/gorm/clause"
)

// UpsertUser inserts the user or refreshes username and first name.
func (s *Store) UpsertUser(ctx context.Context, user *models.User) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
