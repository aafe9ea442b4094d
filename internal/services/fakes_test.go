package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/repository"
)

// memStore is an in-memory stand-in for repository.Store. WithUserLock
// restores the subscription and payment tables when fn fails.
type memStore struct {
	mu sync.Mutex

	logs      map[uint]*models.WebhookLog
	nextLogID uint
	claims    map[string]bool
	sessions  map[string]*models.CheckoutSession
	plans     map[string]*models.Plan
	subs      []models.Subscription
	payments  []models.Payment
	users     map[int64]models.User

	failCreateLog bool
	failSave      error
	clock         func() time.Time

	// lockArrivals, when set, holds every WithUserLock caller until all
	// expected callers have arrived.
	lockArrivals *sync.WaitGroup
}

func newMemStore() *memStore {
	s := &memStore{
		logs:     make(map[uint]*models.WebhookLog),
		claims:   make(map[string]bool),
		sessions: make(map[string]*models.CheckoutSession),
		plans:    make(map[string]*models.Plan),
		users:    make(map[int64]models.User),
		clock:    time.Now,
	}
	monthly, yearly := int64(4990), int64(44910)
	s.plans["monthly"] = &models.Plan{ID: "monthly", Title: "Monthly", PriceMonthly: &monthly, Period: models.PeriodMonthly}
	s.plans["yearly"] = &models.Plan{ID: "yearly", Title: "Yearly", PriceMonthly: &monthly, PriceYearly: &yearly, Period: models.PeriodYearly}
	return s
}

func (s *memStore) CreateWebhookLog(_ context.Context, entry *models.WebhookLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreateLog {
		return errors.New("log table unavailable")
	}
	s.nextLogID++
	entry.ID = s.nextLogID
	cp := *entry
	s.logs[entry.ID] = &cp
	return nil
}

func (s *memStore) MarkWebhookLog(_ context.Context, id uint, ok bool, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, found := s.logs[id]
	if !found {
		return errors.New("no such log")
	}
	entry.ProcessedOK = &ok
	entry.ErrorText = errText
	return nil
}

func (s *memStore) ClaimWebhookEvent(_ context.Context, provider, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := provider + "/" + eventID
	if s.claims[key] {
		return false, nil
	}
	s.claims[key] = true
	return true, nil
}

func (s *memStore) CreateCheckoutSession(_ context.Context, session *models.CheckoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.EventID]; ok {
		return nil
	}
	cp := *session
	s.sessions[session.EventID] = &cp
	return nil
}

func (s *memStore) FindCheckoutSession(_ context.Context, eventID string) (*models.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[eventID]
	if !ok {
		return nil, repository.ErrCheckoutNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *memStore) FindPlan(_ context.Context, planID string) (*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[planID]
	if !ok {
		return nil, repository.ErrPlanNotFound
	}
	cp := *plan
	return &cp, nil
}

func (s *memStore) ListPlans(_ context.Context) ([]models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var plans []models.Plan
	for _, id := range []string{"monthly", "yearly", "free"} {
		if p, ok := s.plans[id]; ok {
			plans = append(plans, *p)
		}
	}
	return plans, nil
}

func (s *memStore) UpsertUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *memStore) LatestSubscription(_ context.Context, userID int64) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest(userID), nil
}

func (s *memStore) latest(userID int64) *models.Subscription {
	var found *models.Subscription
	for i := range s.subs {
		if s.subs[i].UserID != userID {
			continue
		}
		if found == nil || !s.subs[i].UpdatedAt.Before(found.UpdatedAt) {
			cp := s.subs[i]
			found = &cp
		}
	}
	return found
}

func (s *memStore) WithUserLock(_ context.Context, _ int64, fn func(repository.SubscriptionWriter) error) error {
	if s.lockArrivals != nil {
		s.lockArrivals.Done()
		s.lockArrivals.Wait()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subs := append([]models.Subscription(nil), s.subs...)
	payments := append([]models.Payment(nil), s.payments...)
	if err := fn(memWriter{s}); err != nil {
		s.subs, s.payments = subs, payments
		return err
	}
	return nil
}

// seed stores sub as the user's latest subscription.
func (s *memStore) seed(sub models.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = uint(len(s.subs) + 1)
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = s.clock()
	}
	s.subs = append(s.subs, sub)
}

type memWriter struct {
	s *memStore
}

func (w memWriter) LatestSubscription(userID int64) (*models.Subscription, error) {
	return w.s.latest(userID), nil
}

func (w memWriter) SaveSubscription(sub *models.Subscription) error {
	if w.s.failSave != nil {
		return w.s.failSave
	}
	sub.UpdatedAt = w.s.clock()
	if sub.ID == 0 {
		sub.ID = uint(len(w.s.subs) + 1)
		w.s.subs = append(w.s.subs, *sub)
		return nil
	}
	for i := range w.s.subs {
		if w.s.subs[i].ID == sub.ID {
			w.s.subs[i] = *sub
			return nil
		}
	}
	return errors.New("subscription vanished")
}

func (w memWriter) CreatePayment(payment *models.Payment) error {
	payment.ID = uint(len(w.s.payments) + 1)
	w.s.payments = append(w.s.payments, *payment)
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []SubscriptionChange
	err     error
}

func (n *recordingNotifier) SubscriptionChanged(_ context.Context, change SubscriptionChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
	return n.err
}

func newSession(eventID string, userID int64, planID string) *models.CheckoutSession {
	return &models.CheckoutSession{EventID: eventID, UserID: userID, PlanID: planID}
}
