package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type WebhookProcessor interface {
	Process(ctx context.Context, d services.WebhookDelivery) (*services.WebhookResult, error)
}

type WebhookHandler struct {
	processor WebhookProcessor
}

func NewWebhookHandler(processor WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// HandleMock accepts events from the mock payment provider. Deliveries are
// not authenticated.
func (h *WebhookHandler) HandleMock(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)

	// A body that is not a JSON object still reaches the processor so the
	// delivery is logged before it is rejected.
	var event dto.MockWebhookEvent
	_ = json.Unmarshal(body, &event)
	eventID := string(event.EventID)

	result, err := h.processor.Process(c.UserContext(), services.WebhookDelivery{
		EventID: eventID,
		Type:    event.Type,
		Payload: body,
	})
	if err != nil {
		if services.IsRejection(err) {
			return badRequest(c, err.Error())
		}
		slog.Error("webhook processing failed", "event_id", eventID, "event_type", event.Type, "error", err)
		return internalError(c, err)
	}

	return c.JSON(dto.WebhookResponse{OK: true, Dedup: result.Dedup})
}
