package services

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/config"
)

// BillingConfig is the billing policy injected into the core services. The
// services never read the environment themselves.
type BillingConfig struct {
	Provider        string
	PaymentMode     string
	Currency        string
	GraceDays       int
	PublicWebAppURL string
}

func BillingConfigFrom(cfg *config.Config) BillingConfig {
	return BillingConfig{
		Provider:        cfg.PaymentProvider,
		PaymentMode:     cfg.PaymentMode,
		Currency:        cfg.Currency,
		GraceDays:       cfg.GraceDays,
		PublicWebAppURL: cfg.PublicWebAppURL,
	}
}

// SubscriptionChange describes a committed webhook outcome for user-facing
// notifications.
type SubscriptionChange struct {
	UserID    int64
	Event     EventType
	PlanTitle string
	Status    string
	PeriodEnd *time.Time
	GraceDays int
}

type Notifier interface {
	SubscriptionChanged(ctx context.Context, change SubscriptionChange) error
}

// NopNotifier drops every notification. Used when no bot token is configured.
type NopNotifier struct{}

func (NopNotifier) SubscriptionChanged(context.Context, SubscriptionChange) error { return nil }
