package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	flushInterval = 5 * time.Second
	batchSize     = 50
	flushTimeout  = 10 * time.Second
)

type LogSink interface {
	InsertSystemLogs(ctx context.Context, batch []models.SystemLog) error
}

// PGHandler is an slog.Handler that batches ERROR+ logs to PostgreSQL.
type PGHandler struct {
	sink   LogSink
	attrs  []slog.Attr
	shared *pgBuffer
}

type pgBuffer struct {
	mu      sync.Mutex
	entries []models.SystemLog
	ticker  *time.Ticker
	done    chan struct{}
	stopped sync.Once
}

func NewPGHandler(sink LogSink) *PGHandler {
	h := &PGHandler{
		sink: sink,
		shared: &pgBuffer{
			entries: make([]models.SystemLog, 0, batchSize),
			ticker:  time.NewTicker(flushInterval),
			done:    make(chan struct{}),
		},
	}
	go h.flushLoop()
	return h
}

func (h *PGHandler) flushLoop() {
	for {
		select {
		case <-h.shared.ticker.C:
			h.flush()
		case <-h.shared.done:
			h.flush()
			return
		}
	}
}

func (h *PGHandler) flush() {
	b := h.shared
	b.mu.Lock()
	if len(b.entries) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.entries
	b.entries = make([]models.SystemLog, 0, batchSize)
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	// Written to stdout only: the default logger would route this back here.
	if err := h.sink.InsertSystemLogs(ctx, batch); err != nil {
		stdout.Error("failed to flush system logs to DB", "error", err, "count", len(batch))
	}
}

// Stop flushes what is buffered and ends the flush loop.
func (h *PGHandler) Stop() {
	h.shared.stopped.Do(func() {
		h.shared.ticker.Stop()
		close(h.shared.done)
	})
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "event_id":
			entry.EventID = a.Value.String()
		case "user_id":
			if id, ok := a.Value.Any().(int64); ok {
				entry.UserID = &id
			}
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			switch v := a.Value.Any().(type) {
			case float64:
				entry.LatencyMs = int(math.Round(v))
			case int64:
				entry.LatencyMs = int(v)
			}
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	b := h.shared
	b.mu.Lock()
	b.entries = append(b.entries, entry)
	needFlush := len(b.entries) >= batchSize
	b.mu.Unlock()

	if needFlush {
		go h.flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{sink: h.sink, attrs: merged, shared: h.shared}
}

// WithGroup is a no-op: system_logs has no nesting.
func (h *PGHandler) WithGroup(name string) slog.Handler {
	return h
}
