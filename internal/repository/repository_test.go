package repository

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
)

func setupTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger:         logger.New(log.New(io.Discard, "", log.LstdFlags), logger.Config{LogLevel: logger.Silent}),
		TranslateError: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		sqlDB.Close()
	})

	return New(gormDB, time.Second), mock
}

func TestClaimWebhookEvent_FirstDelivery(t *testing.T) {
	store, mock := setupTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "webhook_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	claimed, err := store.ClaimWebhookEvent(context.Background(), "mock", "mock_1")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestClaimWebhookEvent_Duplicate(t *testing.T) {
	store, mock := setupTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "webhook_events"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	claimed, err := store.ClaimWebhookEvent(context.Background(), "mock", "mock_1")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestClaimWebhookEvent_StoreFailure(t *testing.T) {
	store, mock := setupTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "webhook_events"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	claimed, err := store.ClaimWebhookEvent(context.Background(), "mock", "mock_1")
	require.Error(t, err)
	assert.False(t, claimed)
	assert.Contains(t, err.Error(), "failed to claim webhook event")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestLatestSubscription_None(t *testing.T) {
	store, mock := setupTestStore(t)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE user_id = \$1 ORDER BY updated_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "plan_id", "status"}))

	sub, err := store.LatestSubscription(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestLatestSubscription_Found(t *testing.T) {
	store, mock := setupTestStore(t)
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE user_id = \$1 ORDER BY updated_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "plan_id", "status", "current_period_end"}).
			AddRow(7, 42, "monthly", "active", end))

	sub, err := store.LatestSubscription(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, uint(7), sub.ID)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.True(t, end.Equal(*sub.CurrentPeriodEnd))
}

func TestFindCheckoutSession_NotFound(t *testing.T) {
	store, mock := setupTestStore(t)

	mock.ExpectQuery(`SELECT \* FROM "checkout_sessions" WHERE event_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "user_id", "plan_id"}))

	_, err := store.FindCheckoutSession(context.Background(), "mock_missing")
	assert.ErrorIs(t, err, ErrCheckoutNotFound)
}

func TestFindPlan_NotFound(t *testing.T) {
	store, mock := setupTestStore(t)

	mock.ExpectQuery(`SELECT \* FROM "plans" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	_, err := store.FindPlan(context.Background(), "lifetime")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestWithUserLock_CommitsOnSuccess(t *testing.T) {
	store, mock := setupTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	called := false
	err := store.WithUserLock(context.Background(), 42, func(SubscriptionWriter) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestWithUserLock_RollsBackOnError(t *testing.T) {
	store, mock := setupTestStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.WithUserLock(context.Background(), 42, func(SubscriptionWriter) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWithUserLock_LockFailure(t *testing.T) {
	store, mock := setupTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	err := store.WithUserLock(context.Background(), 42, func(SubscriptionWriter) error {
		t.Fatal("fn must not run without the lock")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to lock user 42")
}
