// Package session carries the authenticated Telegram user through a request.
package session

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/access"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDKey  = "user_id"
	tokenKey   = "user"
	verdictKey = "access"
)

var ErrNoUser = errors.New("no authenticated user")

// SetUserID stores the resolved Telegram user id in Fiber context locals.
func SetUserID(c *fiber.Ctx, userID int64) {
	c.Locals(userIDKey, userID)
}

// GetUserID returns the Telegram user id set by the identity middleware.
func GetUserID(c *fiber.Ctx) (int64, error) {
	if id, ok := c.Locals(userIDKey).(int64); ok && id > 0 {
		return id, nil
	}
	return 0, ErrNoUser
}

// UserIDFromToken extracts the Telegram user id from the JWT claims stored
// by the jwt middleware.
func UserIDFromToken(c *fiber.Ctx) (int64, error) {
	token, ok := c.Locals(tokenKey).(*jwt.Token)
	if !ok {
		return 0, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errors.New("missing sub claim")
	}

	return ParseUserID(sub)
}

// ParseUserID parses a positive Telegram user id.
func ParseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid telegram user id")
	}
	return id, nil
}

// SetVerdict and GetVerdict pass the access verdict from the access gate to
// the handler behind it.
func SetVerdict(c *fiber.Ctx, v access.Verdict) {
	c.Locals(verdictKey, v)
}

func GetVerdict(c *fiber.Ctx) (access.Verdict, bool) {
	v, ok := c.Locals(verdictKey).(access.Verdict)
	return v, ok
}
