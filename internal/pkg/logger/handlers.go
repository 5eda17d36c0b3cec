// internal/pkg/logger/handlers.go
package logger

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// ContextHandler extracts values from context and adds them to log records
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a handler that enriches logs with context values
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	contextAttrs := extractContextAttrs(ctx, defaultContextKeys())
	if len(contextAttrs) == 0 {
		return h.handler.Handle(ctx, record)
	}

	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		newRecord.AddAttrs(a)
		return true
	})
	newRecord.AddAttrs(contextAttrs...)

	return h.handler.Handle(ctx, newRecord)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}

// SanitizationHandler removes or masks sensitive data
type SanitizationHandler struct {
	handler   slog.Handler
	patterns  []*regexp.Regexp
	blacklist []string
}

// NewSanitizationHandler creates a handler that sanitizes sensitive data
func NewSanitizationHandler(handler slog.Handler) *SanitizationHandler {
	return &SanitizationHandler{
		handler: handler,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(password|pwd|pass|secret|token|key|auth|bearer|api[-_]?key)\s*[:=]\s*["']?([^"'\s]+)`),
			regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`), // Email
		},
		blacklist: []string{
			"password", "pwd", "secret", "token", "auth", "api_key",
		},
	}
}

func (h *SanitizationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *SanitizationHandler) Handle(ctx context.Context, record slog.Record) error {
	sanitizedMsg := h.sanitizeString(record.Message)
	newRecord := slog.NewRecord(record.Time, record.Level, sanitizedMsg, record.PC)

	record.Attrs(func(a slog.Attr) bool {
		newRecord.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, newRecord)
}

func (h *SanitizationHandler) sanitizeAttr(attr slog.Attr) slog.Attr {
	lowerKey := strings.ToLower(attr.Key)
	for _, blacklisted := range h.blacklist {
		if strings.Contains(lowerKey, blacklisted) {
			attr.Value = slog.StringValue("***REDACTED***")
			return attr
		}
	}

	if s, ok := attr.Value.Any().(string); ok {
		attr.Value = slog.StringValue(h.sanitizeString(s))
	}

	return attr
}

func (h *SanitizationHandler) sanitizeString(s string) string {
	for _, pattern := range h.patterns {
		s = pattern.ReplaceAllString(s, "$1=***REDACTED***")
	}
	return s
}

func (h *SanitizationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SanitizationHandler{
		handler:   h.handler.WithAttrs(attrs),
		patterns:  h.patterns,
		blacklist: h.blacklist,
	}
}

func (h *SanitizationHandler) WithGroup(name string) slog.Handler {
	return &SanitizationHandler{
		handler:   h.handler.WithGroup(name),
		patterns:  h.patterns,
		blacklist: h.blacklist,
	}
}
