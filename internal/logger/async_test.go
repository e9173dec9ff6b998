package logger

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// captureHandler records everything it handles, optionally slowly.
type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
	delay   time.Duration
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	h.records = append(h.records, rec)
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func (h *captureHandler) last() slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.records[len(h.records)-1]
}

func record(msg string) slog.Record {
	return slog.NewRecord(time.Now(), slog.LevelInfo, msg, 0)
}

func TestAsyncHandlerDeliversRecord(t *testing.T) {
	inner := &captureHandler{}
	ah := NewAsyncHandler(inner, 100, 1)

	if err := ah.Handle(context.Background(), record("hello")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	ah.Close()

	if got := inner.count(); got != 1 {
		t.Fatalf("expected 1 record, got %d", got)
	}
}

func TestAsyncHandlerConcurrentWriters(t *testing.T) {
	const writers = 100
	const perWriter = 100

	inner := &captureHandler{}
	ah := NewAsyncHandler(inner, writers*perWriter, 4)

	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				_ = ah.Handle(context.Background(), record("concurrent"))
			}
		}()
	}
	wg.Wait()
	ah.Close()

	if got := inner.count(); got != writers*perWriter {
		t.Fatalf("expected %d records, got %d", writers*perWriter, got)
	}
}

func TestAsyncHandlerDropsOnFullQueue(t *testing.T) {
	// A slow writer behind a one-slot queue cannot keep up.
	inner := &captureHandler{delay: 10 * time.Millisecond}
	ah := NewAsyncHandler(inner, 1, 1)

	for range 50 {
		_ = ah.Handle(context.Background(), record("flood"))
	}
	ah.Close()

	if ah.DroppedCount() == 0 {
		t.Fatal("expected drops against a one-slot queue, got none")
	}
	// The drop count itself must surface in the output.
	if last := inner.last(); !strings.Contains(last.Message, "dropped") {
		t.Errorf("expected final drop report, got %q", last.Message)
	}
}

func TestAsyncHandlerCloseFlushesBacklog(t *testing.T) {
	inner := &captureHandler{}
	ah := NewAsyncHandler(inner, 1000, 2)

	const total = 200
	for range total {
		_ = ah.Handle(context.Background(), record("flush"))
	}
	ah.Close()

	if got := inner.count(); got != total {
		t.Fatalf("expected %d records after close, got %d", total, got)
	}
}

func TestAsyncHandlerCloseIdempotent(t *testing.T) {
	inner := &captureHandler{}
	ah := NewAsyncHandler(inner, 10, 1)
	_ = ah.Handle(context.Background(), record("once"))
	ah.Close()
	ah.Close() // must not panic on the closed queue

	if got := inner.count(); got != 1 {
		t.Fatalf("expected 1 record, got %d", got)
	}
}

func TestAsyncHandlerWithAttrsSharesQueue(t *testing.T) {
	inner := &captureHandler{}
	ah := NewAsyncHandler(inner, 10, 1)
	derived := ah.WithAttrs([]slog.Attr{slog.String("stage", "stage1")})

	_ = derived.Handle(context.Background(), record("derived"))
	ah.Close() // closing the parent must drain the derived handler's record

	if got := inner.count(); got != 1 {
		t.Fatalf("expected 1 record via derived handler, got %d", got)
	}
}
