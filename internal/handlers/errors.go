package handlers

import (
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
}

// internalError reports err to Sentry when a hub is attached to the request
// and answers with a generic 500.
func internalError(c *fiber.Ctx, err error) error {
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal_error"})
}
