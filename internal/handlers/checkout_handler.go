package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type CheckoutCreator interface {
	Create(ctx context.Context, userID int64, planID string) (*models.CheckoutSession, error)
}

type CheckoutHandler struct {
	checkout CheckoutCreator
}

func NewCheckoutHandler(checkout CheckoutCreator) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

func (h *CheckoutHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.CreateCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, "plan_id required")
	}

	checkout, err := h.checkout.Create(c.UserContext(), userID, req.PlanID)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUnknownPlan):
		return badRequest(c, err.Error())
	case errors.Is(err, services.ErrPaymentModeUnsupported):
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("failed to create checkout", "user_id", userID, "plan_id", req.PlanID, "error", err)
		return internalError(c, err)
	}

	slog.Info("checkout created", "user_id", userID, "plan_id", req.PlanID, "event_id", checkout.EventID)
	return c.JSON(dto.CheckoutResponse{
		OK:          true,
		Provider:    checkout.Provider,
		EventID:     checkout.EventID,
		CheckoutURL: checkout.CheckoutURL,
		PlanID:      checkout.PlanID,
	})
}
