package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Closer flushes buffered log records on shutdown.
type Closer interface {
	Close()
}

// nopCloser is the Closer for synchronous mode, where nothing buffers.
type nopCloser struct{}

func (nopCloser) Close() {}

// AsyncHandler decouples log emission from I/O: Handle enqueues the
// record and workers write it out. A deliberation turn fans provider
// calls across goroutines that all log, so a stalled stdout must not
// stall the turn. When the queue is full the record is dropped and
// counted rather than blocking.
type AsyncHandler struct {
	inner   slog.Handler
	queue   chan slog.Record
	workers *sync.WaitGroup
	dropped *atomic.Int64
	once    *sync.Once
}

// NewAsyncHandler starts workers draining a queue of the given capacity
// into inner.
func NewAsyncHandler(inner slog.Handler, capacity, workers int) *AsyncHandler {
	h := &AsyncHandler{
		inner:   inner,
		queue:   make(chan slog.Record, capacity),
		workers: &sync.WaitGroup{},
		dropped: &atomic.Int64{},
		once:    &sync.Once{},
	}
	for range workers {
		h.workers.Add(1)
		go h.run()
	}
	return h
}

func (h *AsyncHandler) run() {
	defer h.workers.Done()
	for rec := range h.queue {
		_ = h.inner.Handle(context.Background(), rec)
	}
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it if the queue is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.queue <- rec:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// WithAttrs wraps the derived inner handler; the queue, workers and
// drop counter stay shared so Close drains everything.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{
		inner:   h.inner.WithAttrs(attrs),
		queue:   h.queue,
		workers: h.workers,
		dropped: h.dropped,
		once:    h.once,
	}
}

// WithGroup wraps the derived inner handler, sharing the queue.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{
		inner:   h.inner.WithGroup(name),
		queue:   h.queue,
		workers: h.workers,
		dropped: h.dropped,
		once:    h.once,
	}
}

// DroppedCount reports how many records were discarded on a full queue.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.dropped.Load()
}

// Close drains the queue and stops the workers. If records were dropped
// a final synchronous record says how many, so the loss is visible in
// the output it competed with. Safe to call more than once.
func (h *AsyncHandler) Close() {
	h.once.Do(func() {
		close(h.queue)
		h.workers.Wait()
		if n := h.dropped.Load(); n > 0 {
			rec := slog.NewRecord(time.Now(), slog.LevelWarn,
				fmt.Sprintf("async logger dropped %d records", n), 0)
			_ = h.inner.Handle(context.Background(), rec)
		}
	})
}
