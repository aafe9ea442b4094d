package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/session"
)

const testSecret = "test-secret"

func identityApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/me", Identity(cfg), func(c *fiber.Ctx) error {
		id, err := session.GetUserID(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"user_id": id})
	})
	return app
}

func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func call(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestIdentity_DevHeader(t *testing.T) {
	app := identityApp(&config.Config{JWTSecret: testSecret, AppEnv: "development"})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Telegram-User-Id", "42")
	status, body := call(t, app, req)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(42), body["user_id"])
}

func TestIdentity_DevQuery(t *testing.T) {
	app := identityApp(&config.Config{JWTSecret: testSecret, AppEnv: "development"})

	status, body := call(t, app, httptest.NewRequest(http.MethodGet, "/me?telegram_user_id=7", nil))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(7), body["user_id"])
}

func TestIdentity_DevRejections(t *testing.T) {
	app := identityApp(&config.Config{JWTSecret: testSecret, AppEnv: "development"})

	status, _ := call(t, app, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	for _, raw := range []string{"abc", "0", "-5"} {
		status, body := call(t, app, httptest.NewRequest(http.MethodGet, "/me?telegram_user_id="+raw, nil))
		assert.Equal(t, http.StatusBadRequest, status, raw)
		assert.Equal(t, "telegram_user_id required", body["error"])
	}
}

func TestIdentity_BearerToken(t *testing.T) {
	app := identityApp(&config.Config{JWTSecret: testSecret, AppEnv: "production"})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "42", time.Now().Add(time.Hour)))
	status, body := call(t, app, req)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(42), body["user_id"])
}

func TestIdentity_ProductionIgnoresDevHeader(t *testing.T) {
	app := identityApp(&config.Config{JWTSecret: testSecret, AppEnv: "production"})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Telegram-User-Id", "42")
	status, body := call(t, app, req)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["error"])
}

func TestIdentity_BadTokens(t *testing.T) {
	app := identityApp(&config.Config{JWTSecret: testSecret, AppEnv: "development"})

	tests := map[string]string{
		"expired":     signToken(t, "42", time.Now().Add(-time.Hour)),
		"bad subject": signToken(t, "alice", time.Now().Add(time.Hour)),
		"garbage":     "not-a-jwt",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			status, _ := call(t, app, req)
			assert.Equal(t, http.StatusUnauthorized, status)
		})
	}
}

type stubChecker struct {
	verdict access.Verdict
	err     error
}

func (s stubChecker) Check(context.Context, int64) (access.Verdict, error) {
	return s.verdict, s.err
}

func gatedApp(checker AccessChecker) *fiber.App {
	app := fiber.New()
	app.Get("/paid",
		func(c *fiber.Ctx) error {
			session.SetUserID(c, 42)
			return c.Next()
		},
		RequireAccess(checker),
		func(c *fiber.Ctx) error {
			v, ok := session.GetVerdict(c)
			return c.JSON(fiber.Map{"ok": ok, "reason": v.Reason})
		},
	)
	return app
}

func TestRequireAccess_Granted(t *testing.T) {
	until := time.Now().Add(time.Hour)
	app := gatedApp(stubChecker{verdict: access.Verdict{Access: true, Status: "active", Until: &until, Reason: access.ReasonActive}})

	status, body := call(t, app, httptest.NewRequest(http.MethodGet, "/paid", nil))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "active", body["reason"])
}

func TestRequireAccess_Denied(t *testing.T) {
	app := gatedApp(stubChecker{verdict: access.Verdict{Status: "canceled", Reason: access.ReasonExpired}})

	status, body := call(t, app, httptest.NewRequest(http.MethodGet, "/paid", nil))

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "subscription_required", body["error"])
	assert.Equal(t, "expired", body["reason"])
	assert.Equal(t, "canceled", body["status"])
}

func TestRequireAccess_CheckFailure(t *testing.T) {
	app := gatedApp(stubChecker{err: errors.New("db down")})

	status, body := call(t, app, httptest.NewRequest(http.MethodGet, "/paid", nil))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", body["error"])
}

func TestRequireAccess_NoUser(t *testing.T) {
	app := fiber.New()
	app.Get("/paid", RequireAccess(stubChecker{}), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	status, _ := call(t, app, httptest.NewRequest(http.MethodGet, "/paid", nil))
	assert.Equal(t, http.StatusUnauthorized, status)
}
