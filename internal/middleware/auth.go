package middleware

import (
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/session"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

const devUserHeader = "X-Telegram-User-Id"

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: "unauthorized",
	})
}

// JWTProtected verifies the bearer token and resolves the Telegram user id
// from its subject.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			userID, err := session.UserIDFromToken(c)
			if err != nil {
				return unauthorized(c)
			}
			session.SetUserID(c, userID)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
}

// Identity resolves the caller. A bearer token always wins. Outside
// production a request without one may name the user in the
// X-Telegram-User-Id header or the telegram_user_id query parameter.
func Identity(cfg *config.Config) fiber.Handler {
	jwtProtected := JWTProtected(cfg)

	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "" || cfg.IsProduction() {
			return jwtProtected(c)
		}

		raw := c.Get(devUserHeader)
		if raw == "" {
			raw = c.Query("telegram_user_id")
		}
		if raw == "" {
			return unauthorized(c)
		}

		userID, err := session.ParseUserID(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "telegram_user_id required",
			})
		}
		session.SetUserID(c, userID)
		return c.Next()
	}
}
