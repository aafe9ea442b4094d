package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type TelegramAuthenticator interface {
	Login(ctx context.Context, initData string) (*dto.AuthResponse, error)
}

type AuthHandler struct {
	authService TelegramAuthenticator
}

func NewAuthHandler(authService TelegramAuthenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Telegram exchanges Mini App initData for an access token.
func (h *AuthHandler) Telegram(c *fiber.Ctx) error {
	var req dto.TelegramAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, "init_data required")
	}

	resp, err := h.authService.Login(c.UserContext(), req.InitData)
	if err != nil {
		var initErr *services.InitDataError
		if errors.As(err, &initErr) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "invalid_init_data", Reason: initErr.Reason,
			})
		}
		slog.Error("telegram login failed", "error", err)
		return internalError(c, err)
	}

	return c.JSON(resp)
}
