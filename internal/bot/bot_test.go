package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/services"
)

type recordingSender struct {
	sent []*telego.SendMessageParams
	err  error
}

func (s *recordingSender) SendMessage(_ context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	s.sent = append(s.sent, params)
	return &telego.Message{}, s.err
}

func testCatalog(t *testing.T) *catalog.Registry {
	t.Helper()
	reg := catalog.NewRegistry()
	reg.AddCategory(&catalog.Category{ID: "author", Title: "Авторские курсы"})
	reg.AddCategory(&catalog.Category{ID: "personal", Title: "Персональный курс"})
	require.NoError(t, reg.AddProduct(&catalog.Product{ID: "watercolor", Category: "author", Title: "Акварель с нуля", FullDesc: "Курс", Audience: "Новичкам"}))
	require.NoError(t, reg.AddProduct(&catalog.Product{ID: "portrait", Category: "author", Title: "Портрет"}))
	return reg
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "4 990 ₸", money(4990, "KZT"))
	assert.Equal(t, "44 910 ₸", money(44910, "KZT"))
	assert.Equal(t, "1 000 000 USD", money(1000000, "USD"))
	assert.Equal(t, "990 ₸", money(990, "KZT"))
	assert.Equal(t, "-1 500 ₸", money(-1500, "KZT"))
}

func TestCategoriesKeyboard(t *testing.T) {
	kb := categoriesKeyboard(testCatalog(t))

	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "cat:author", kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "cat:personal", kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, cbPlans, kb.InlineKeyboard[2][0].CallbackData)
}

func TestProductsKeyboard(t *testing.T) {
	kb := productsKeyboard(testCatalog(t), "author")

	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "prod:watercolor", kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "prod:portrait", kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, cbMenu, kb.InlineKeyboard[2][0].CallbackData)
}

func TestProductText(t *testing.T) {
	text := productText(testCatalog(t).Product("watercolor"))

	assert.Contains(t, text, "Акварель с нуля")
	assert.Contains(t, text, "Для кого: Новичкам")
	assert.NotContains(t, text, "Что внутри")
}

func TestPlansKeyboard(t *testing.T) {
	monthly, yearly := int64(4990), int64(44910)
	kb := plansKeyboard([]models.Plan{
		{ID: "monthly", Title: "Ежемесячно", PriceMonthly: &monthly, Period: models.PeriodMonthly},
		{ID: "yearly", Title: "Ежегодно", PriceMonthly: &monthly, PriceYearly: &yearly, Period: models.PeriodYearly},
	}, "KZT")

	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "Ежегодно · 44 910 ₸", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "plan:yearly", kb.InlineKeyboard[1][0].CallbackData)
}

func TestCheckoutKeyboard(t *testing.T) {
	kb := checkoutKeyboard("https://example.com/mock-checkout?event_id=mock_1")
	assert.Equal(t, "https://example.com/mock-checkout?event_id=mock_1", kb.InlineKeyboard[0][0].URL)
}

func TestNotifier_SendsToUser(t *testing.T) {
	sender := &recordingSender{}
	end := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)

	err := NewNotifier(sender).SubscriptionChanged(context.Background(), services.SubscriptionChange{
		UserID:    42,
		Event:     services.EventPaymentSucceeded,
		PlanTitle: "Ежемесячно",
		Status:    models.SubscriptionActive,
		PeriodEnd: &end,
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].ChatID.ID)
	assert.Contains(t, sender.sent[0].Text, "15.04.2025")
}

func TestNotifier_PropagatesSendError(t *testing.T) {
	sender := &recordingSender{err: errors.New("forbidden: bot was blocked by the user")}

	err := NewNotifier(sender).SubscriptionChanged(context.Background(), services.SubscriptionChange{UserID: 42, Event: services.EventSubscriptionCanceled})
	assert.Error(t, err)
}

func TestChangeText(t *testing.T) {
	end := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)

	failed := ChangeText(services.SubscriptionChange{Event: services.EventPaymentFailed, PeriodEnd: &end, GraceDays: 7})
	assert.Contains(t, failed, "22.04.2025")

	assert.Contains(t, ChangeText(services.SubscriptionChange{Event: services.EventPaymentFailed}), "Оплата не прошла")
	assert.Contains(t, ChangeText(services.SubscriptionChange{Event: services.EventSubscriptionCanceled, PeriodEnd: &end}), "15.04.2025")
}
