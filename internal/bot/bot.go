// Package bot runs the Telegram bot: the Mini App menu button, catalogue
// browsing, checkout links and payment notifications.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

type PlanLister interface {
	List(ctx context.Context) ([]models.Plan, error)
}

type CheckoutCreator interface {
	Create(ctx context.Context, userID int64, planID string) (*models.CheckoutSession, error)
}

type Bot struct {
	Instance  *telego.Bot
	catalog   *catalog.Registry
	plans     PlanLister
	checkout  CheckoutCreator
	webAppURL string
	currency  string
}

func NewBot(token string, reg *catalog.Registry, plans PlanLister, checkout CheckoutCreator, webAppURL, currency string) (*Bot, error) {
	tgBot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		Instance:  tgBot,
		catalog:   reg,
		plans:     plans,
		checkout:  checkout,
		webAppURL: webAppURL,
		currency:  currency,
	}, nil
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.Instance.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	handler, err := th.NewBotHandler(b.Instance, updates)
	if err != nil {
		return fmt.Errorf("failed to create bot handler: %w", err)
	}

	handler.Handle(b.handleStart, th.CommandEqual("start"))
	handler.Handle(b.handleMenu, th.CallbackDataEqual(cbMenu))
	handler.Handle(b.handleCategory, th.CallbackDataPrefix(cbCategory))
	handler.Handle(b.handleProduct, th.CallbackDataPrefix(cbProduct))
	handler.Handle(b.handlePlans, th.CallbackDataEqual(cbPlans))
	handler.Handle(b.handlePlan, th.CallbackDataPrefix(cbPlan))

	go func() {
		<-ctx.Done()
		_ = handler.Stop()
	}()

	slog.Info("telegram bot started")
	return handler.Start()
}

func (b *Bot) handleStart(ctx *th.Context, update telego.Update) error {
	chatID := update.Message.Chat.ID

	if !strings.HasPrefix(b.webAppURL, "https://") {
		_, err := ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(chatID),
			"WEBAPP_URL должен быть HTTPS. Сейчас: "+b.webAppURL))
		return err
	}

	err := ctx.Bot().SetChatMenuButton(ctx.Context(), &telego.SetChatMenuButtonParams{
		ChatID: chatID,
		MenuButton: &telego.MenuButtonWebApp{
			Type:   "web_app",
			Text:   "Open",
			WebApp: telego.WebAppInfo{URL: b.webAppURL},
		},
	})
	if err != nil {
		slog.Warn("failed to set menu button", "user_id", chatID, "error", err)
	}

	_, err = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(chatID),
		"Готово. Кнопка Open рядом с полем ввода открывает приложение 👇\n\nВыберите раздел каталога:",
	).WithReplyMarkup(categoriesKeyboard(b.catalog)))
	return err
}

func (b *Bot) handleMenu(ctx *th.Context, update telego.Update) error {
	q := update.CallbackQuery
	defer b.answer(ctx, q)

	_, err := ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(q.From.ID), "Выберите раздел каталога:").
		WithReplyMarkup(categoriesKeyboard(b.catalog)))
	return err
}

func (b *Bot) handleCategory(ctx *th.Context, update telego.Update) error {
	q := update.CallbackQuery
	defer b.answer(ctx, q)

	category := b.catalog.Category(strings.TrimPrefix(q.Data, cbCategory))
	if category == nil {
		return nil
	}

	_, err := ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(q.From.ID), category.Title).
		WithReplyMarkup(productsKeyboard(b.catalog, category.ID)))
	return err
}

func (b *Bot) handleProduct(ctx *th.Context, update telego.Update) error {
	q := update.CallbackQuery
	defer b.answer(ctx, q)

	product := b.catalog.Product(strings.TrimPrefix(q.Data, cbProduct))
	if product == nil {
		return nil
	}

	_, err := ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(q.From.ID), productText(product)).
		WithReplyMarkup(productKeyboard(product)))
	return err
}

func (b *Bot) handlePlans(ctx *th.Context, update telego.Update) error {
	q := update.CallbackQuery
	defer b.answer(ctx, q)

	plans, err := b.plans.List(ctx.Context())
	if err != nil {
		slog.Error("failed to list plans for bot", "user_id", q.From.ID, "error", err)
		_, err = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(q.From.ID), "❌ Не удалось загрузить тарифы. Попробуйте позже."))
		return err
	}

	_, err = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(q.From.ID), "Выберите тариф:").
		WithReplyMarkup(plansKeyboard(plans, b.currency)))
	return err
}

func (b *Bot) handlePlan(ctx *th.Context, update telego.Update) error {
	q := update.CallbackQuery
	defer b.answer(ctx, q)

	planID := strings.TrimPrefix(q.Data, cbPlan)
	session, err := b.checkout.Create(ctx.Context(), q.From.ID, planID)
	if err != nil {
		slog.Error("bot checkout failed", "user_id", q.From.ID, "plan_id", planID, "error", err)
		_, err = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(q.From.ID), "❌ Не удалось создать платёж. Попробуйте позже."))
		return err
	}

	_, err = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(q.From.ID), "Ссылка на оплату готова:").
		WithReplyMarkup(checkoutKeyboard(session.CheckoutURL)))
	return err
}

func (b *Bot) answer(ctx *th.Context, q *telego.CallbackQuery) {
	if err := ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(q.ID)); err != nil {
		slog.Warn("failed to answer callback query", "error", err)
	}
}
