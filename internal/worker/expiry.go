// Package worker runs background jobs that are not tied to a request.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/redis/go-redis/v9"
)

const (
	reminderLead   = 24 * time.Hour
	reminderSlack  = time.Hour
	reminderKeyTTL = 48 * time.Hour
)

type ExpiringSubscriptions interface {
	SubscriptionsEndingBetween(ctx context.Context, from, to time.Time) ([]models.Subscription, error)
}

type Sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// ReminderMarks records which users were already reminded. SetNX must
// report true only for the first caller.
type ReminderMarks interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ExpiryChecker reminds users about 24 hours before their access window
// closes. Each user is reminded at most once per 48 hours.
type ExpiryChecker struct {
	subs     ExpiringSubscriptions
	marks    ReminderMarks
	sender   Sender
	interval time.Duration
	now      func() time.Time
}

func NewExpiryChecker(subs ExpiringSubscriptions, marks ReminderMarks, sender Sender, interval time.Duration) *ExpiryChecker {
	return &ExpiryChecker{
		subs:     subs,
		marks:    marks,
		sender:   sender,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs a check immediately and then on every tick until ctx is done.
func (c *ExpiryChecker) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	slog.Info("expiry reminder worker started", "interval", c.interval.String())
	c.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			c.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce sends reminders for windows closing in [now+23h, now+25h] and
// returns how many were sent.
func (c *ExpiryChecker) RunOnce(ctx context.Context) int {
	now := c.now()
	from := now.Add(reminderLead - reminderSlack)
	to := now.Add(reminderLead + reminderSlack)

	subs, err := c.subs.SubscriptionsEndingBetween(ctx, from, to)
	if err != nil {
		slog.Error("failed to query expiring subscriptions", "error", err)
		return 0
	}

	sent := 0
	for _, sub := range subs {
		key := fmt.Sprintf("notified_24h_%d", sub.UserID)
		first, err := c.marks.SetNX(ctx, key, "true", reminderKeyTTL).Result()
		if err != nil {
			slog.Warn("reminder dedup unavailable", "user_id", sub.UserID, "error", err)
			continue
		}
		if !first {
			continue
		}

		_, err = c.sender.SendMessage(ctx, tu.Message(tu.ID(sub.UserID), reminderText(sub)))
		if err != nil {
			slog.Warn("failed to send expiry reminder", "user_id", sub.UserID, "error", err)
			// Let the next run try again.
			if err := c.marks.Del(ctx, key).Err(); err != nil {
				slog.Warn("failed to release reminder mark", "user_id", sub.UserID, "key", key, "error", err)
			}
			continue
		}
		sent++
		slog.Info("expiry reminder sent", "user_id", sub.UserID)
	}
	return sent
}

func reminderText(sub models.Subscription) string {
	if sub.Status == models.SubscriptionCanceled {
		return "⚠️ Подписка отменена, доступ к курсам закончится через сутки. Оформите её снова, чтобы продолжить обучение."
	}
	return "⚠️ Ваша подписка истекает через сутки! Пожалуйста, продлите её, чтобы не потерять доступ."
}
