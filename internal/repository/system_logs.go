package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
)

func (s *Store) InsertSystemLogs(ctx context.Context, batch []models.SystemLog) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	if err := db.CreateInBatches(batch, 50).Error; err != nil {
		return fmt.Errorf("failed to insert system logs: %w", err)
	}
	return nil
}

// DeleteSystemLogsBefore removes records older than cutoff and reports how
// many were deleted.
func (s *Store) DeleteSystemLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete system logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
