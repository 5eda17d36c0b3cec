// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/avolio/stockbook-be/internal/adapters/db"
)

const defaultRetentionDays = 30

// CleanupProcessor purges soft-deleted rows past their retention window.
type CleanupProcessor struct {
	db     *db.Database
	logger *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(database *db.Database, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		db:     database,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// ProcessCleanup deletes items that were soft-deleted more than the
// retention period ago. Ledger layers go with them via ON DELETE CASCADE.
func (p *CleanupProcessor) ProcessCleanup(ctx context.Context, t *asynq.Task) error {
	var payload CleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal cleanup payload: %w", err)
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = defaultRetentionDays
	}

	start := time.Now()
	cutoff := time.Now().AddDate(0, 0, -payload.RetentionDays)

	tag, err := p.db.Exec(ctx,
		`DELETE FROM items WHERE deleted_at IS NOT NULL AND deleted_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("purge soft-deleted items: %w", err)
	}

	p.logger.InfoContext(ctx, "cleanup completed",
		slog.Int("retention_days", payload.RetentionDays),
		slog.Int64("items_purged", tag.RowsAffected()),
		slog.Duration("duration", time.Since(start)))

	return nil
}
