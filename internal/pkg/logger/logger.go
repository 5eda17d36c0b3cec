// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey represents keys for context values
type ContextKey string

const (
	// Context keys for logging
	ContextKeyRequestID  ContextKey = "request_id"
	ContextKeyClientIP   ContextKey = "client_ip"
	ContextKeyMethod     ContextKey = "method"
	ContextKeyPath       ContextKey = "path"
	ContextKeyStatusCode ContextKey = "status_code"
	ContextKeyDuration   ContextKey = "duration_ms"
)

type loggerCtxKey struct{}

// LogConfig holds logger configuration
type LogConfig struct {
	Level          string `json:"level"`
	Format         string `json:"format"` // json, text
	Output         string `json:"output"`
	AddSource      bool   `json:"add_source"`
	ServiceName    string `json:"service_name"`
	ServiceVersion string `json:"service_version"`
	Environment    string `json:"environment"`
}

// SetupLogger initializes the application logger and installs it as the
// slog default.
func SetupLogger(level string, format string) *slog.Logger {
	config := &LogConfig{
		Level:          level,
		Format:         format,
		Output:         "stdout",
		AddSource:      true,
		ServiceName:    os.Getenv("SERVICE_NAME"),
		ServiceVersion: os.Getenv("SERVICE_VERSION"),
		Environment:    os.Getenv("APP_ENV"),
	}

	logger := NewLogger(config)
	slog.SetDefault(logger)

	return logger
}

// NewLogger creates a logger from config. Records are enriched with
// request-scoped context values and sensitive attributes are masked.
func NewLogger(config *LogConfig) *slog.Logger {
	if config == nil {
		config = &LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		}
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(config.Level),
		AddSource: config.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return replaceAttr(groups, a)
		},
	}

	var handler slog.Handler
	writer := getWriter(config.Output)

	switch config.Format {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	handler = NewContextHandler(handler)
	handler = NewSanitizationHandler(handler)

	var attrs []slog.Attr
	if config.ServiceName != "" {
		attrs = append(attrs, slog.String("service", config.ServiceName))
	}
	if config.ServiceVersion != "" {
		attrs = append(attrs, slog.String("version", config.ServiceVersion))
	}
	if config.Environment != "" {
		attrs = append(attrs, slog.String("env", config.Environment))
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	return slog.New(handler)
}

// FromContext extracts the logger from context or returns the default
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithLogger stores the logger in the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// Helper functions

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getWriter(output string) io.Writer {
	switch output {
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		if strings.HasPrefix(output, "file:") {
			filename := strings.TrimPrefix(output, "file:")
			file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return os.Stdout
			}
			return file
		}
		return os.Stdout
	}
}

func defaultContextKeys() []ContextKey {
	return []ContextKey{
		ContextKeyRequestID,
		ContextKeyClientIP,
		ContextKeyMethod,
		ContextKeyPath,
		ContextKeyStatusCode,
		ContextKeyDuration,
	}
}

func extractContextAttrs(ctx context.Context, keys []ContextKey) []slog.Attr {
	var attrs []slog.Attr

	for _, key := range keys {
		if val := ctx.Value(key); val != nil {
			keyStr := string(key)
			switch v := val.(type) {
			case string:
				if v != "" {
					attrs = append(attrs, slog.String(keyStr, v))
				}
			case int:
				attrs = append(attrs, slog.Int(keyStr, v))
			case int64:
				attrs = append(attrs, slog.Int64(keyStr, v))
			case float64:
				attrs = append(attrs, slog.Float64(keyStr, v))
			case bool:
				attrs = append(attrs, slog.Bool(keyStr, v))
			case time.Duration:
				attrs = append(attrs, slog.Duration(keyStr, v))
			case time.Time:
				attrs = append(attrs, slog.Time(keyStr, v))
			case uuid.UUID:
				attrs = append(attrs, slog.String(keyStr, v.String()))
			default:
				attrs = append(attrs, slog.Any(keyStr, v))
			}
		}
	}

	return attrs
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	// Stable time format for log aggregators
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
		}
	}

	// Durations logged under *_ms keys become plain milliseconds
	if strings.HasSuffix(a.Key, "_ms") {
		if d, ok := a.Value.Any().(time.Duration); ok {
			a.Value = slog.Float64Value(float64(d.Milliseconds()))
		}
	}

	return a
}
