package handlers

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

type PlanLister interface {
	List(ctx context.Context) ([]models.Plan, error)
}

type PlanHandler struct {
	plans    PlanLister
	currency string
}

func NewPlanHandler(plans PlanLister, currency string) *PlanHandler {
	return &PlanHandler{plans: plans, currency: currency}
}

func (h *PlanHandler) List(c *fiber.Ctx) error {
	plans, err := h.plans.List(c.UserContext())
	if err != nil {
		slog.Error("failed to list plans", "error", err)
		return internalError(c, err)
	}

	items := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		items = append(items, dto.PlanResponse{
			ID:       p.ID,
			Title:    p.Title,
			Price:    p.Price(),
			Currency: h.currency,
			Period:   p.Period,
		})
	}
	return c.JSON(dto.PlansResponse{OK: true, Items: items})
}
