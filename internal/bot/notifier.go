package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/services"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

type Sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// Notifier tells users about committed subscription changes.
type Notifier struct {
	sender Sender
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

func (n *Notifier) SubscriptionChanged(ctx context.Context, change services.SubscriptionChange) error {
	_, err := n.sender.SendMessage(ctx, tu.Message(tu.ID(change.UserID), ChangeText(change)))
	return err
}

// ChangeText renders the user-facing message for a subscription change.
func ChangeText(change services.SubscriptionChange) string {
	switch change.Event {
	case services.EventPaymentSucceeded:
		return fmt.Sprintf("✅ Оплата прошла. Подписка «%s» активна до %s.", change.PlanTitle, date(change.PeriodEnd))
	case services.EventPaymentFailed:
		if change.PeriodEnd == nil {
			return "❌ Оплата не прошла. Попробуйте оформить подписку ещё раз."
		}
		grace := change.PeriodEnd.AddDate(0, 0, change.GraceDays)
		return fmt.Sprintf("❌ Оплата не прошла. Доступ сохранится до %s, продлите подписку, чтобы не потерять его.", date(&grace))
	case services.EventSubscriptionCanceled:
		if change.PeriodEnd == nil {
			return "Подписка отменена."
		}
		return fmt.Sprintf("Подписка отменена. Доступ к курсам сохранится до %s.", date(change.PeriodEnd))
	default:
		return "Статус подписки изменён."
	}
}

func date(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.UTC().Format("02.01.2006")
}
