package middleware

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AccessChecker interface {
	Check(ctx context.Context, userID int64) (access.Verdict, error)
}

// RequireAccess lets the request through only while the caller's
// subscription grants access. Must run after Identity.
func RequireAccess(checker AccessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := session.GetUserID(c)
		if err != nil {
			return unauthorized(c)
		}

		verdict, err := checker.Check(c.UserContext(), userID)
		if err != nil {
			slog.Error("access check failed", "user_id", userID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: "internal_error",
			})
		}

		if !verdict.Access {
			return c.Status(fiber.StatusForbidden).JSON(dto.SubscriptionRequiredResponse{
				OK:     false,
				Error:  "subscription_required",
				Reason: string(verdict.Reason),
				Status: verdict.Status,
			})
		}

		session.SetVerdict(c, verdict)
		return c.Next()
	}
}
