package middleware

import (
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-Telegram-User-Id",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: false,
	})
}
