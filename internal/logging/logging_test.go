package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
)

type memSink struct {
	mu      sync.Mutex
	batches [][]models.SystemLog
}

func (s *memSink) InsertSystemLogs(_ context.Context, batch []models.SystemLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
	return nil
}

func (s *memSink) all() []models.SystemLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SystemLog
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func TestPGHandler_PersistsErrorsOnly(t *testing.T) {
	sink := &memSink{}
	h := NewPGHandler(sink)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Info("ignored")
	logger.Error("webhook processing failed",
		"event_id", "mock_1",
		"user_id", int64(42),
		"error", errors.New("timeout"),
		"event_type", "payment_succeeded",
	)
	h.Stop()
	h.Stop()

	require.Eventually(t, func() bool { return len(sink.all()) == 1 }, time.Second, 10*time.Millisecond)

	entry := sink.all()[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "webhook processing failed", entry.Message)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.Equal(t, "mock_1", entry.EventID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, int64(42), *entry.UserID)
	assert.Equal(t, "timeout", entry.Error)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, "payment_succeeded", extra["event_type"])
}

func TestMultiHandler_FansOut(t *testing.T) {
	var info, errs bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)).With("component", "test")

	logger.Info("hello")
	logger.Error("boom")

	assert.Contains(t, info.String(), `"msg":"hello"`)
	assert.Contains(t, info.String(), `"msg":"boom"`)
	assert.NotContains(t, errs.String(), "hello")
	assert.Contains(t, errs.String(), `"component":"test"`)
}

type failingSink struct{ slog.Handler }

func (failingSink) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandler_FailingSinkDoesNotBlockOthers(t *testing.T) {
	var out bytes.Buffer
	h := NewMultiHandler(
		failingSink{slog.NewJSONHandler(&bytes.Buffer{}, nil)},
		slog.NewJSONHandler(&out, nil),
	)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "still written", 0))

	assert.EqualError(t, err, "sink down")
	assert.Contains(t, out.String(), `"msg":"still written"`)
}

type memPruner struct {
	cutoff time.Time
	err    error
}

func (p *memPruner) DeleteSystemLogsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	p.cutoff = cutoff
	return 3, p.err
}

func TestPruneOnce_UsesRetention(t *testing.T) {
	p := &memPruner{}
	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	PruneOnce(p, 30, now)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), p.cutoff)

	p.err = errors.New("db down")
	PruneOnce(p, 30, now)
}
