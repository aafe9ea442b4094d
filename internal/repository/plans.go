package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"gorm.io/gorm"
)

func (s *Store) FindPlan(ctx context.Context, planID string) (*models.Plan, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var plan models.Plan
	err := db.Where("id = ?", planID).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return &plan, nil
}

func (s *Store) ListPlans(ctx context.Context) ([]models.Plan, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var plans []models.Plan
	if err := db.Order("price_monthly ASC NULLS LAST").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}
