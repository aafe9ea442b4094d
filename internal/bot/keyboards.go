package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Callback data prefixes.
const (
	cbMenu     = "menu"
	cbCategory = "cat:"
	cbProduct  = "prod:"
	cbPlans    = "plans"
	cbPlan     = "plan:"
)

func categoriesKeyboard(reg *catalog.Registry) *telego.InlineKeyboardMarkup {
	var rows [][]telego.InlineKeyboardButton
	for _, c := range reg.Categories() {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(c.Title).WithCallbackData(cbCategory+c.ID),
		))
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("💳 Оформить подписку").WithCallbackData(cbPlans),
	))
	return tu.InlineKeyboard(rows...)
}

func productsKeyboard(reg *catalog.Registry, categoryID string) *telego.InlineKeyboardMarkup {
	var rows [][]telego.InlineKeyboardButton
	for _, p := range reg.ProductsIn(categoryID) {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(p.Title).WithCallbackData(cbProduct+p.ID),
		))
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("« Назад").WithCallbackData(cbMenu),
	))
	return tu.InlineKeyboard(rows...)
}

func productKeyboard(p *catalog.Product) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("💳 Оформить подписку").WithCallbackData(cbPlans),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("« Назад").WithCallbackData(cbCategory+p.Category),
		),
	)
}

func productText(p *catalog.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\n", p.Title, p.FullDesc)
	if p.Audience != "" {
		fmt.Fprintf(&b, "Для кого: %s\n", p.Audience)
	}
	if p.Contents != "" {
		fmt.Fprintf(&b, "Что внутри: %s\n", p.Contents)
	}
	b.WriteString("\nДоступ ко всем курсам открывается по подписке.")
	return b.String()
}

func plansKeyboard(plans []models.Plan, currency string) *telego.InlineKeyboardMarkup {
	var rows [][]telego.InlineKeyboardButton
	for _, p := range plans {
		label := fmt.Sprintf("%s · %s", p.Title, money(p.Price(), currency))
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithCallbackData(cbPlan+p.ID),
		))
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("« Назад").WithCallbackData(cbMenu),
	))
	return tu.InlineKeyboard(rows...)
}

func checkoutKeyboard(url string) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(tu.InlineKeyboardButton("Перейти к оплате").WithURL(url)),
		tu.InlineKeyboardRow(tu.InlineKeyboardButton("« В меню").WithCallbackData(cbMenu)),
	)
}

// money formats whole currency units with thin thousands grouping,
// e.g. 44910 KZT -> "44 910 ₸".
func money(amount int64, currency string) string {
	digits := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	symbol := currency
	if currency == "KZT" {
		symbol = "₸"
	}
	return b.String() + " " + symbol
}
