// Package testutil provides structured logging helpers for tests.
package testutil

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(newTestHandler(t))
}

// NewRecordingLogger returns a logger that writes to t.Log() and keeps every
// record so tests can assert on what was logged.
func NewRecordingLogger(t testing.TB) (*slog.Logger, *LogRecorder) {
	t.Helper()
	rec := &LogRecorder{next: newTestHandler(t), state: &recorderState{}}
	return slog.New(rec), rec
}

func newTestHandler(t testing.TB) slog.Handler {
	return slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// LogRecorder is a slog.Handler that remembers records.
type LogRecorder struct {
	next  slog.Handler
	state *recorderState
}

type recorderState struct {
	mu      sync.Mutex
	records []slog.Record
}

// Enabled implements slog.Handler.
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(ctx context.Context, rec slog.Record) error {
	r.state.mu.Lock()
	r.state.records = append(r.state.records, rec.Clone())
	r.state.mu.Unlock()
	return r.next.Handle(ctx, rec)
}

// WithAttrs implements slog.Handler. Derived handlers share the records.
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogRecorder{next: r.next.WithAttrs(attrs), state: r.state}
}

// WithGroup implements slog.Handler.
func (r *LogRecorder) WithGroup(name string) slog.Handler {
	return &LogRecorder{next: r.next.WithGroup(name), state: r.state}
}

// Messages returns the messages logged at level or above, in order.
func (r *LogRecorder) Messages(level slog.Level) []string {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	var out []string
	for _, rec := range r.state.records {
		if rec.Level >= level {
			out = append(out, rec.Message)
		}
	}
	return out
}

// Logged reports whether msg was logged at any level.
func (r *LogRecorder) Logged(msg string) bool {
	return slices.Contains(r.Messages(slog.LevelDebug), msg)
}

// Attr returns the value of key on the first record with msg.
func (r *LogRecorder) Attr(msg, key string) (slog.Value, bool) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for _, rec := range r.state.records {
		if rec.Message != msg {
			continue
		}
		var (
			val   slog.Value
			found bool
		)
		rec.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				val, found = a.Value, true
				return false
			}
			return true
		})
		return val, found
	}
	return slog.Value{}, false
}
