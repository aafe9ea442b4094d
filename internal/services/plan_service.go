package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	planCacheKey = "plans:v1"
	planCacheTTL = 5 * time.Minute
)

var ErrPlanNotFound = errors.New("plan not found")

// PlanCache is the subset of the Redis client used for the plan list.
type PlanCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type PlanStore interface {
	FindPlan(ctx context.Context, planID string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// PlanService serves the plan catalogue. The list is cached in Redis when a
// client is given; the cache is advisory and every Redis failure falls back
// to the store.
type PlanService struct {
	store PlanStore
	cache PlanCache
}

func NewPlanService(store PlanStore, cache PlanCache) *PlanService {
	return &PlanService{store: store, cache: cache}
}

func (s *PlanService) Get(ctx context.Context, planID string) (*models.Plan, error) {
	plan, err := s.store.FindPlan(ctx, planID)
	if errors.Is(err, repository.ErrPlanNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// List returns the purchasable plans, cheapest first. Plans without a
// positive price for their own class are hidden.
func (s *PlanService) List(ctx context.Context) ([]models.Plan, error) {
	if plans, ok := s.cached(ctx); ok {
		return plans, nil
	}

	all, err := s.store.ListPlans(ctx)
	if err != nil {
		return nil, err
	}

	plans := make([]models.Plan, 0, len(all))
	for _, p := range all {
		if p.Price() > 0 {
			plans = append(plans, p)
		}
	}

	s.fill(ctx, plans)
	return plans, nil
}

// Invalidate drops the cached list, e.g. after reseeding plans.
func (s *PlanService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, planCacheKey).Err(); err != nil {
		slog.Warn("failed to invalidate plan cache", "error", err)
	}
}

func (s *PlanService) cached(ctx context.Context) ([]models.Plan, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, planCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("plan cache read failed", "error", err)
		}
		return nil, false
	}
	var plans []models.Plan
	if err := json.Unmarshal(raw, &plans); err != nil {
		slog.Warn("plan cache entry is corrupt", "error", err)
		return nil, false
	}
	return plans, true
}

func (s *PlanService) fill(ctx context.Context, plans []models.Plan) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(plans)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, planCacheKey, raw, planCacheTTL).Err(); err != nil {
		slog.Warn("plan cache write failed", "error", err)
	}
}
