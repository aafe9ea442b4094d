package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/repository"
	"gorm.io/datatypes"
)

type EventType string

const (
	EventPaymentSucceeded     EventType = "payment_succeeded"
	EventPaymentFailed        EventType = "payment_failed"
	EventSubscriptionCanceled EventType = "subscription_canceled"
)

const notificationTimeout = 5 * time.Second

// Rejections of a delivery. The messages are returned to the caller verbatim.
var (
	ErrMissingEventFields = errors.New("event_id and type required")
	ErrUnknownEventType   = errors.New("type must be payment_succeeded|payment_failed|subscription_canceled")
	ErrUnknownEventID     = errors.New("unknown event_id")
	ErrUnknownPlan        = errors.New("unknown plan_id")
)

func ParseEventType(s string) (EventType, error) {
	switch t := EventType(s); t {
	case EventPaymentSucceeded, EventPaymentFailed, EventSubscriptionCanceled:
		return t, nil
	default:
		return "", ErrUnknownEventType
	}
}

// IsRejection reports whether err is caused by the delivery itself rather
// than by the store.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMissingEventFields) ||
		errors.Is(err, ErrUnknownEventType) ||
		errors.Is(err, ErrUnknownEventID) ||
		errors.Is(err, ErrUnknownPlan)
}

type WebhookStore interface {
	CreateWebhookLog(ctx context.Context, entry *models.WebhookLog) error
	MarkWebhookLog(ctx context.Context, id uint, ok bool, errText string) error
	ClaimWebhookEvent(ctx context.Context, provider, eventID string) (bool, error)
	WithUserLock(ctx context.Context, userID int64, fn func(repository.SubscriptionWriter) error) error
}

type CheckoutResolver interface {
	Resolve(ctx context.Context, eventID string) (*models.CheckoutSession, error)
}

type PlanLookup interface {
	Get(ctx context.Context, planID string) (*models.Plan, error)
}

// WebhookDelivery is one inbound provider event. Payload is the raw request
// body and is only used for the audit log.
type WebhookDelivery struct {
	EventID string
	Type    string
	Payload []byte
}

type WebhookResult struct {
	Dedup        bool
	Event        EventType
	UserID       int64
	Subscription *models.Subscription
	Payment      *models.Payment
}

type WebhookService struct {
	store     WebhookStore
	checkouts CheckoutResolver
	plans     PlanLookup
	notifier  Notifier
	billing   BillingConfig
	now       func() time.Time
}

func NewWebhookService(store WebhookStore, checkouts CheckoutResolver, plans PlanLookup, notifier Notifier, billing BillingConfig) *WebhookService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &WebhookService{
		store:     store,
		checkouts: checkouts,
		plans:     plans,
		notifier:  notifier,
		billing:   billing,
		now:       time.Now,
	}
}

// Process applies one delivery. The event is logged before anything else,
// claimed in the idempotency set before identity resolution, and its
// subscription change is committed under the user's lock. A repeated
// delivery returns a result with Dedup set and changes nothing.
func (s *WebhookService) Process(ctx context.Context, d WebhookDelivery) (*WebhookResult, error) {
	logID := s.logIntake(ctx, d)

	eventType, err := validateDelivery(d)
	if err != nil {
		s.markLog(ctx, logID, false, err.Error())
		return nil, err
	}

	claimed, err := s.store.ClaimWebhookEvent(ctx, s.billing.Provider, d.EventID)
	if err != nil {
		s.markLog(ctx, logID, false, err.Error())
		return nil, err
	}
	if !claimed {
		slog.Info("webhook event already processed", "event_id", d.EventID, "event_type", string(eventType))
		s.markLog(ctx, logID, true, "")
		return &WebhookResult{Dedup: true, Event: eventType}, nil
	}

	result, plan, err := s.apply(ctx, d.EventID, eventType)
	if err != nil {
		s.markLog(ctx, logID, false, err.Error())
		return nil, err
	}
	s.markLog(ctx, logID, true, "")

	slog.Info("webhook event applied",
		"event_id", d.EventID,
		"event_type", string(eventType),
		"user_id", result.UserID,
		"status", result.Subscription.Status,
	)

	s.notify(ctx, result, plan)
	return result, nil
}

func validateDelivery(d WebhookDelivery) (EventType, error) {
	if d.EventID == "" || d.Type == "" {
		return "", ErrMissingEventFields
	}
	return ParseEventType(d.Type)
}

func (s *WebhookService) apply(ctx context.Context, eventID string, eventType EventType) (*WebhookResult, *models.Plan, error) {
	session, err := s.checkouts.Resolve(ctx, eventID)
	if errors.Is(err, ErrCheckoutNotFound) {
		return nil, nil, ErrUnknownEventID
	}
	if err != nil {
		return nil, nil, err
	}

	plan, err := s.plans.Get(ctx, session.PlanID)
	if errors.Is(err, ErrPlanNotFound) {
		return nil, nil, ErrUnknownPlan
	}
	if err != nil {
		return nil, nil, err
	}

	result := &WebhookResult{Event: eventType, UserID: session.UserID}
	err = s.store.WithUserLock(ctx, session.UserID, func(w repository.SubscriptionWriter) error {
		existing, err := w.LatestSubscription(session.UserID)
		if err != nil {
			return err
		}
		now := s.now()

		switch eventType {
		case EventPaymentSucceeded:
			result.Subscription, result.Payment, err = s.applyPaymentSucceeded(w, existing, session, plan, now)
		case EventPaymentFailed:
			result.Subscription, result.Payment, err = s.applyPaymentFailed(w, existing, session)
		case EventSubscriptionCanceled:
			result.Subscription, err = s.applyCanceled(w, existing, session)
		default:
			err = fmt.Errorf("unhandled event type %q", eventType)
		}
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return result, plan, nil
}

// applyPaymentSucceeded extends the user's window by one period of the plan.
// A window that is still open is extended from its end, otherwise from now.
func (s *WebhookService) applyPaymentSucceeded(w repository.SubscriptionWriter, existing *models.Subscription, session *models.CheckoutSession, plan *models.Plan, now time.Time) (*models.Subscription, *models.Payment, error) {
	start := now
	if existing != nil && existing.CurrentPeriodEnd != nil && existing.CurrentPeriodEnd.After(now) {
		start = *existing.CurrentPeriodEnd
	}
	end := NextPeriodEnd(start, plan)

	payment := &models.Payment{
		UserID:            session.UserID,
		Provider:          s.billing.Provider,
		ProviderPaymentID: session.EventID,
		Status:            models.PaymentSucceeded,
		Amount:            plan.Price(),
		Currency:          s.billing.Currency,
		PeriodStart:       &start,
		PeriodEnd:         &end,
	}
	if err := w.CreatePayment(payment); err != nil {
		return nil, nil, err
	}

	sub := existing
	if sub == nil {
		sub = &models.Subscription{UserID: session.UserID}
	}
	sub.PlanID = plan.ID
	sub.Status = models.SubscriptionActive
	sub.CurrentPeriodStart = &start
	sub.CurrentPeriodEnd = &end
	sub.Provider = s.billing.Provider
	sub.ProviderReference = session.EventID

	if err := w.SaveSubscription(sub); err != nil {
		return nil, nil, err
	}
	return sub, payment, nil
}

// applyPaymentFailed moves the user into past_due keeping the current window,
// so the grace period is measured from the paid period's end.
func (s *WebhookService) applyPaymentFailed(w repository.SubscriptionWriter, existing *models.Subscription, session *models.CheckoutSession) (*models.Subscription, *models.Payment, error) {
	payment := &models.Payment{
		UserID:            session.UserID,
		Provider:          s.billing.Provider,
		ProviderPaymentID: session.EventID,
		Status:            models.PaymentFailed,
		Amount:            0,
		Currency:          s.billing.Currency,
	}
	if err := w.CreatePayment(payment); err != nil {
		return nil, nil, err
	}

	sub := existing
	if sub == nil {
		sub = &models.Subscription{
			UserID:            session.UserID,
			PlanID:            session.PlanID,
			Provider:          s.billing.Provider,
			ProviderReference: session.EventID,
		}
	}
	sub.Status = models.SubscriptionPastDue

	if err := w.SaveSubscription(sub); err != nil {
		return nil, nil, err
	}
	return sub, payment, nil
}

func (s *WebhookService) applyCanceled(w repository.SubscriptionWriter, existing *models.Subscription, session *models.CheckoutSession) (*models.Subscription, error) {
	sub := existing
	if sub == nil {
		sub = &models.Subscription{
			UserID:            session.UserID,
			PlanID:            session.PlanID,
			Provider:          s.billing.Provider,
			ProviderReference: session.EventID,
		}
	}
	sub.Status = models.SubscriptionCanceled

	if err := w.SaveSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// NextPeriodEnd adds one billing period of the plan to start using calendar
// arithmetic. Day overflow normalises forward, so Jan 31 + 1 month is Mar 3
// (Mar 2 in leap years).
func NextPeriodEnd(start time.Time, plan *models.Plan) time.Time {
	if plan.IsYearly() {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

func (s *WebhookService) logIntake(ctx context.Context, d WebhookDelivery) uint {
	entry := &models.WebhookLog{
		Provider:   s.billing.Provider,
		EventID:    d.EventID,
		EventType:  d.Type,
		RawPayload: rawPayload(d.Payload),
	}
	if err := s.store.CreateWebhookLog(ctx, entry); err != nil {
		slog.Warn("failed to record webhook log", "event_id", d.EventID, "error", err)
		return 0
	}
	return entry.ID
}

func (s *WebhookService) markLog(ctx context.Context, id uint, ok bool, errText string) {
	if id == 0 {
		return
	}
	if err := s.store.MarkWebhookLog(ctx, id, ok, errText); err != nil {
		slog.Warn("failed to mark webhook log", "log_id", id, "error", err)
	}
}

func (s *WebhookService) notify(ctx context.Context, result *WebhookResult, plan *models.Plan) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
	defer cancel()

	change := SubscriptionChange{
		UserID:    result.UserID,
		Event:     result.Event,
		PlanTitle: plan.Title,
		Status:    result.Subscription.Status,
		PeriodEnd: result.Subscription.CurrentPeriodEnd,
		GraceDays: s.billing.GraceDays,
	}
	if err := s.notifier.SubscriptionChanged(ctx, change); err != nil {
		slog.Warn("failed to notify user", "user_id", result.UserID, "event_type", string(result.Event), "error", err)
	}
}

// rawPayload keeps JSON bodies as they are and wraps anything else in a JSON
// string so the jsonb column always accepts it.
func rawPayload(body []byte) datatypes.JSON {
	if len(body) == 0 {
		return datatypes.JSON("{}")
	}
	if json.Valid(body) {
		return datatypes.JSON(body)
	}
	wrapped, _ := json.Marshal(string(body))
	return datatypes.JSON(wrapped)
}
