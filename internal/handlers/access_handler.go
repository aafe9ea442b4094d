package handlers

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AccessReader interface {
	Check(ctx context.Context, userID int64) (access.Verdict, error)
	MySubscription(ctx context.Context, userID int64) (*dto.SubscriptionStatusResponse, error)
}

type AccessHandler struct {
	access AccessReader
}

func NewAccessHandler(access AccessReader) *AccessHandler {
	return &AccessHandler{access: access}
}

func (h *AccessHandler) Check(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	verdict, err := h.access.Check(c.UserContext(), userID)
	if err != nil {
		slog.Error("access check failed", "user_id", userID, "error", err)
		return internalError(c, err)
	}
	return c.JSON(services.VerdictResponse(verdict))
}

func (h *AccessHandler) MySubscription(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	resp, err := h.access.MySubscription(c.UserContext(), userID)
	if err != nil {
		slog.Error("failed to load subscription", "user_id", userID, "error", err)
		return internalError(c, err)
	}
	return c.JSON(resp)
}
