package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// InitDataError rejects a Mini App initData string. Reason is reported to the
// client.
type InitDataError struct {
	Reason string
}

func (e *InitDataError) Error() string {
	return "invalid init data: " + e.Reason
}

const (
	InitDataHashMissing  = "hash_missing"
	InitDataHashMismatch = "hash_mismatch"
	InitDataExpired      = "auth_date_expired"
	InitDataUserMissing  = "user_missing"
)

var ErrBotTokenMissing = errors.New("BOT_TOKEN is not configured")

type UserStore interface {
	UpsertUser(ctx context.Context, user *models.User) error
}

type AuthService struct {
	users        UserStore
	botToken     string
	jwtSecret    string
	accessExpiry time.Duration
	maxAge       time.Duration
	now          func() time.Time
}

func NewAuthService(users UserStore, cfg *config.Config) *AuthService {
	return &AuthService{
		users:        users,
		botToken:     cfg.BotToken,
		jwtSecret:    cfg.JWTSecret,
		accessExpiry: cfg.JWTAccessExpiry,
		maxAge:       cfg.InitDataMaxAge,
		now:          time.Now,
	}
}

// VerifyInitData checks the Telegram signature and freshness of initData
// and returns the Telegram user it was issued for.
func (s *AuthService) VerifyInitData(initData string) (*telego.WebAppUser, error) {
	if s.botToken == "" {
		return nil, ErrBotTokenMissing
	}

	raw, err := url.ParseQuery(initData)
	if err != nil || raw.Get("hash") == "" {
		return nil, &InitDataError{Reason: InitDataHashMissing}
	}

	values, err := tu.ValidateWebAppData(s.botToken, initData)
	if err != nil {
		return nil, &InitDataError{Reason: InitDataHashMismatch}
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil || s.now().Sub(time.Unix(authDate, 0)) > s.maxAge {
		return nil, &InitDataError{Reason: InitDataExpired}
	}

	var user telego.WebAppUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return nil, &InitDataError{Reason: InitDataUserMissing}
	}
	return &user, nil
}

// Login verifies initData, records the Telegram user and issues an access
// token whose subject is the Telegram user id.
func (s *AuthService) Login(ctx context.Context, initData string) (*dto.AuthResponse, error) {
	tgUser, err := s.VerifyInitData(initData)
	if err != nil {
		return nil, err
	}

	user := &models.User{ID: tgUser.ID}
	if tgUser.Username != "" {
		user.Username = &tgUser.Username
	}
	if tgUser.FirstName != "" {
		user.FirstName = &tgUser.FirstName
	}
	if err := s.users.UpsertUser(ctx, user); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("telegram user signed in", "user_id", user.ID)

	return &dto.AuthResponse{
		OK:          true,
		AccessToken: token,
		ExpiresAt:   expiresAt.Unix(),
		User: dto.UserResponse{
			ID:        tgUser.ID,
			Username:  tgUser.Username,
			FirstName: tgUser.FirstName,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(userID int64) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessExpiry)
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}
