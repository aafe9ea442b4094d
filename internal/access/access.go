// Package access decides whether a subscription grants access at a point in
// time. It performs no I/O and is safe to call from any goroutine.
package access

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
)

type Reason string

const (
	ReasonActive           Reason = "active"
	ReasonPastDueGrace     Reason = "past_due_grace"
	ReasonCanceledUntilEnd Reason = "canceled_until_end"
	ReasonExpired          Reason = "expired"
	ReasonNone             Reason = "none"
	ReasonMissingPeriodEnd Reason = "missing_period_end"
)

// Verdict is the outcome of an access check. Until is set only when Access
// is true and marks the first instant access is no longer granted.
type Verdict struct {
	Access bool
	Status string
	Until  *time.Time
	Reason Reason
}

// Evaluate maps a subscription snapshot to a verdict. A nil subscription
// means the user never had one. graceDays are calendar days added to the
// period end of a past_due subscription; negative values count as zero.
func Evaluate(sub *models.Subscription, now time.Time, graceDays int) Verdict {
	if sub == nil {
		return Verdict{Status: models.SubscriptionNone, Reason: ReasonNone}
	}

	if sub.CurrentPeriodEnd == nil || sub.CurrentPeriodEnd.IsZero() {
		return Verdict{Status: sub.Status, Reason: ReasonMissingPeriodEnd}
	}
	periodEnd := *sub.CurrentPeriodEnd

	switch sub.Status {
	case models.SubscriptionActive:
		return grantBefore(sub.Status, now, periodEnd, ReasonActive)
	case models.SubscriptionPastDue:
		if graceDays < 0 {
			graceDays = 0
		}
		return grantBefore(sub.Status, now, periodEnd.AddDate(0, 0, graceDays), ReasonPastDueGrace)
	case models.SubscriptionCanceled:
		return grantBefore(sub.Status, now, periodEnd, ReasonCanceledUntilEnd)
	default:
		return Verdict{Status: sub.Status, Reason: ReasonExpired}
	}
}

func grantBefore(status string, now, until time.Time, reason Reason) Verdict {
	if now.Before(until) {
		return Verdict{Access: true, Status: status, Until: &until, Reason: reason}
	}
	return Verdict{Status: status, Reason: ReasonExpired}
}
