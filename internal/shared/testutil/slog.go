// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LogRecord is a captured log record.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// BufferedSlogHandler captures log records for assertions in tests.
type BufferedSlogHandler struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewBufferedSlogHandler creates a buffered handler.
func NewBufferedSlogHandler() *BufferedSlogHandler {
	return &BufferedSlogHandler{}
}

// NewTestLogger returns a logger writing into a buffered handler.
func NewTestLogger() (*slog.Logger, *BufferedSlogHandler) {
	h := NewBufferedSlogHandler()
	return slog.New(h), h
}

// Enabled implements slog.Handler
func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, LogRecord{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs implements slog.Handler; attribute scoping is not needed
// for assertions, so the handler is returned unchanged.
func (h *BufferedSlogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

// WithGroup implements slog.Handler
func (h *BufferedSlogHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of the captured records.
func (h *BufferedSlogHandler) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogRecord, len(h.records))
	copy(out, h.records)
	return out
}

// HasMessage reports whether any captured record's message contains
// the given substring.
func (h *BufferedSlogHandler) HasMessage(substr string) bool {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, substr) {
			return true
		}
	}
	return false
}
