package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
)

type SubscriptionReader interface {
	LatestSubscription(ctx context.Context, userID int64) (*models.Subscription, error)
}

// AccessService reads the caller's latest subscription and evaluates it
// against the configured grace period.
type AccessService struct {
	subs      SubscriptionReader
	plans     PlanLookup
	graceDays int
	now       func() time.Time
}

func NewAccessService(subs SubscriptionReader, plans PlanLookup, billing BillingConfig) *AccessService {
	return &AccessService{
		subs:      subs,
		plans:     plans,
		graceDays: billing.GraceDays,
		now:       time.Now,
	}
}

func (s *AccessService) Check(ctx context.Context, userID int64) (access.Verdict, error) {
	sub, err := s.subs.LatestSubscription(ctx, userID)
	if err != nil {
		return access.Verdict{}, err
	}
	return access.Evaluate(sub, s.now(), s.graceDays), nil
}

// MySubscription reports the latest subscription together with its verdict.
// A plan that was removed after purchase leaves PlanTitle empty.
func (s *AccessService) MySubscription(ctx context.Context, userID int64) (*dto.SubscriptionStatusResponse, error) {
	sub, err := s.subs.LatestSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	verdict := access.Evaluate(sub, s.now(), s.graceDays)

	resp := &dto.SubscriptionStatusResponse{
		Status: verdict.Status,
		Access: verdict.Access,
		Until:  verdict.Until,
		Reason: string(verdict.Reason),
	}
	if sub == nil {
		return resp, nil
	}

	resp.CurrentPeriodEnd = sub.CurrentPeriodEnd
	resp.PlanID = sub.PlanID

	plan, err := s.plans.Get(ctx, sub.PlanID)
	switch {
	case err == nil:
		resp.PlanTitle = plan.Title
	case errors.Is(err, ErrPlanNotFound):
		slog.Warn("subscription references unknown plan", "user_id", userID, "plan_id", sub.PlanID)
	default:
		return nil, err
	}
	return resp, nil
}

func VerdictResponse(v access.Verdict) dto.AccessResponse {
	return dto.AccessResponse{
		OK:     true,
		Access: v.Access,
		Status: v.Status,
		Until:  v.Until,
		Reason: string(v.Reason),
	}
}
