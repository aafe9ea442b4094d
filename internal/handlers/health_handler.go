package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ping func() error
}

func NewHealthHandler(ping func() error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		OK:   true,
		Time: time.Now().UTC().Format(time.RFC3339),
		DB:   dbStatus,
	})
}
