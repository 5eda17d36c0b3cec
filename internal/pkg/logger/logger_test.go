package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolio/stockbook-be/internal/pkg/logger"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	base := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(logger.NewSanitizationHandler(logger.NewContextHandler(base)))
}

func TestContextHandler_EnrichesFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	ctx := context.WithValue(context.Background(), logger.ContextKeyRequestID, "req-123")
	ctx = context.WithValue(ctx, logger.ContextKeyPath, "/api/v1/items")

	log.InfoContext(ctx, "request handled")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-123", record["request_id"])
	assert.Equal(t, "/api/v1/items", record["path"])
}

func TestSanitizationHandler_MasksSensitiveAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.Info("connecting",
		slog.String("db_password", "hunter2"),
		slog.String("host", "localhost"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "***REDACTED***", record["db_password"])
	assert.Equal(t, "localhost", record["host"])
}

func TestSanitizationHandler_MasksSecretsInMessage(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.Info("auth failed for token=abc123")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record["msg"], "abc123")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, logger.FromContext(ctx))

	var buf bytes.Buffer
	custom := newBufferLogger(&buf)
	ctx = logger.WithLogger(ctx, custom)
	assert.Equal(t, custom, logger.FromContext(ctx))
}
