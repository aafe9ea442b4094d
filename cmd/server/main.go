package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	fiberredis "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/apps/library"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/bot"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/worker"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Course catalogue
	registry, err := catalog.LoadFromFile(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "categories", len(registry.Categories()), "products", len(registry.Products()))

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := database.SeedPlans(database.DB, database.DefaultPlans()); err != nil {
		slog.Error("plan seeding failed", "error", err)
		os.Exit(1)
	}

	store := repository.New(database.DB, cfg.StoreTimeout)

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.WithDatabase(store)

	// Log cleanup
	cleanupDone := make(chan struct{})
	logging.StartCleanup(store, cfg.LogRetentionDays, cleanupDone)

	// Redis is optional: without it plans are read from the database on
	// every request and rate limits live in process memory.
	var (
		planCache      services.PlanCache
		limiterStorage fiber.Storage
		rdb            *redis.Client
	)
	if client, err := database.ConnectRedis(cfg); err != nil {
		slog.Warn("redis unavailable, continuing without cache", "addr", cfg.RedisAddr(), "error", err)
	} else {
		rdb = client
		planCache = client
		limiterStorage = fiberredis.New(fiberredis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			Database: 1,
		})
	}

	// Services
	billing := services.BillingConfigFrom(cfg)
	planService := services.NewPlanService(store, planCache)
	planService.Invalidate(context.Background())
	checkoutService := services.NewCheckoutService(store, planService, billing)
	accessService := services.NewAccessService(store, planService, billing)
	authService := services.NewAuthService(store, cfg)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Telegram bot, payment notifications and expiry reminders
	var notifier services.Notifier = services.NopNotifier{}
	if cfg.BotToken != "" {
		tgBot, err := bot.NewBot(cfg.BotToken, registry, planService, checkoutService, cfg.WebAppURL, cfg.Currency)
		if err != nil {
			slog.Error("telegram bot init failed", "error", err)
			os.Exit(1)
		}
		notifier = bot.NewNotifier(tgBot.Instance)

		go func() {
			if err := tgBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("telegram bot stopped", "error", err)
			}
		}()

		if rdb != nil {
			checker := worker.NewExpiryChecker(store, rdb, tgBot.Instance, cfg.ExpiryCheckInterval)
			go checker.Start(ctx)
		} else {
			slog.Warn("expiry reminders disabled: redis is required for dedup")
		}
	} else {
		slog.Warn("BOT_TOKEN not set, telegram bot and notifications disabled")
	}

	webhookService := services.NewWebhookService(store, checkoutService, planService, notifier, billing)

	// Plugins
	plugins := []apps.Plugin{
		library.New(),
	}
	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
	}

	// Handlers
	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Health:   handlers.NewHealthHandler(database.Ping),
		Plans:    handlers.NewPlanHandler(planService, cfg.Currency),
		Checkout: handlers.NewCheckoutHandler(checkoutService),
		Webhook:  handlers.NewWebhookHandler(webhookService),
		Access:   handlers.NewAccessHandler(accessService),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, h, limiterStorage, plugins, apps.Deps{
		Config:  cfg,
		Catalog: registry,
		Access:  accessService,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "payment_mode", cfg.PaymentMode)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	stop()
	close(cleanupDone)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if limiterStorage != nil {
		_ = limiterStorage.Close()
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal_error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "internal_error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}
