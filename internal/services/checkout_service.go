package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/repository"
	"github.com/google/uuid"
)

const PaymentModeMock = "mock"

var (
	ErrCheckoutNotFound       = errors.New("checkout session not found")
	ErrPaymentModeUnsupported = errors.New("only mock payment mode is supported")
)

type CheckoutStore interface {
	CreateCheckoutSession(ctx context.Context, session *models.CheckoutSession) error
	FindCheckoutSession(ctx context.Context, eventID string) (*models.CheckoutSession, error)
}

// CheckoutService mints checkout sessions and resolves provider event ids
// back to the user and plan that started them.
type CheckoutService struct {
	store      CheckoutStore
	plans      PlanLookup
	billing    BillingConfig
	newEventID func() string
}

func NewCheckoutService(store CheckoutStore, plans PlanLookup, billing BillingConfig) *CheckoutService {
	return &CheckoutService{
		store:   store,
		plans:   plans,
		billing: billing,
		newEventID: func() string {
			return "mock_" + uuid.NewString()
		},
	}
}

// Create starts a checkout for userID on planID and returns the stored
// session including its checkout URL.
func (s *CheckoutService) Create(ctx context.Context, userID int64, planID string) (*models.CheckoutSession, error) {
	if s.billing.PaymentMode != PaymentModeMock {
		return nil, ErrPaymentModeUnsupported
	}

	if _, err := s.plans.Get(ctx, planID); err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return nil, ErrUnknownPlan
		}
		return nil, err
	}

	eventID := s.newEventID()
	session := &models.CheckoutSession{
		EventID:     eventID,
		UserID:      userID,
		PlanID:      planID,
		Provider:    s.billing.Provider,
		CheckoutURL: s.checkoutURL(eventID, userID, planID),
	}
	if err := s.Register(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Register records an event id minted elsewhere. Registering the same event
// id again keeps the first mapping.
func (s *CheckoutService) Register(ctx context.Context, session *models.CheckoutSession) error {
	if session.EventID == "" {
		return fmt.Errorf("checkout session without event id")
	}
	if session.Provider == "" {
		session.Provider = s.billing.Provider
	}
	return s.store.CreateCheckoutSession(ctx, session)
}

func (s *CheckoutService) Resolve(ctx context.Context, eventID string) (*models.CheckoutSession, error) {
	session, err := s.store.FindCheckoutSession(ctx, eventID)
	if errors.Is(err, repository.ErrCheckoutNotFound) {
		return nil, ErrCheckoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *CheckoutService) checkoutURL(eventID string, userID int64, planID string) string {
	q := url.Values{}
	q.Set("event_id", eventID)
	q.Set("telegram_user_id", strconv.FormatInt(userID, 10))
	q.Set("plan_id", planID)
	return strings.TrimRight(s.billing.PublicWebAppURL, "/") + "/mock-checkout?" + q.Encode()
}
