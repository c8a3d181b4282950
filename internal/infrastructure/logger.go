package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dartwatch/internal/config"
)

// contextKey is a type for context keys
type contextKey string

// TraceIDContextKey is the key for storing trace ID in context
const TraceIDContextKey contextKey = "trace_id"

// WithTraceID returns a context carrying the given trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// TraceIDFromContext returns the trace ID stored in the context, if any.
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return id
	}
	return ""
}

// InitializeLogger creates and configures the application logger and
// installs it as the slog default.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	logger, err := createLogger(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// createLogger creates a new slog logger based on configuration
func createLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}

	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "file":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	case "both":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = io.MultiWriter(os.Stdout, file)
	default:
		output = os.Stdout
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	return slog.New(&traceHandler{Handler: handler}), nil
}

// traceHandler injects the trace_id from context into every record.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
