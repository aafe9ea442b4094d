package routes

import (
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const webhooksPrefix = "/api/webhooks"

func limitReached(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Error: "rate_limited"})
}

// isWebhook keeps provider deliveries out of the per-IP limiter so every
// delivery reaches the audit log.
func isWebhook(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), webhooksPrefix)
}

type Handlers struct {
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	Plans    *handlers.PlanHandler
	Checkout *handlers.CheckoutHandler
	Webhook  *handlers.WebhookHandler
	Access   *handlers.AccessHandler
}

// Setup mounts every route under /api. limiterStorage may be nil, in which
// case rate limits are kept in process memory.
func Setup(app *fiber.App, h Handlers, limiterStorage fiber.Storage, plugins []apps.Plugin, deps apps.Deps) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Next:              isWebhook,
		LimitReached:      limitReached,
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           limiterStorage,
	}))

	api.Get("/health", h.Health.Check)
	api.Get("/plans", h.Plans.List)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		LimitReached:      limitReached,
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return "auth:" + c.IP() },
		Storage:           limiterStorage,
	}))
	auth.Post("/telegram", h.Auth.Telegram)

	// Provider deliveries carry no user identity.
	webhooks := api.Group("/webhooks")
	webhooks.Post("/mock", h.Webhook.HandleMock)

	identity := middleware.Identity(deps.Config)
	api.Post("/checkout/create", identity, h.Checkout.Create)
	api.Get("/access", identity, h.Access.Check)
	api.Get("/me/subscription", identity, h.Access.MySubscription)

	// Each plugin owns /api/<id> and always resolves the caller.
	for _, p := range plugins {
		p.RegisterRoutes(api.Group("/"+p.ID(), identity), deps)
	}
}
