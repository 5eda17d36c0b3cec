// internal/adapters/db/sequence_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avolio/stockbook-be/internal/core/ports"
)

// sequenceRepository hands out per-prefix, per-day counters for external
// transaction IDs. The upsert is atomic: concurrent callers serialize on the
// row and never see the same value.
type sequenceRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *Database, logger *slog.Logger) ports.SequenceRepository {
	return &sequenceRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "sequence")),
	}
}

// Next returns the next counter value for (prefix, dateKey), starting at 1
func (r *sequenceRepository) Next(ctx context.Context, prefix, dateKey string) (int64, error) {
	query := `
		INSERT INTO sequences (prefix, date_key, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, date_key)
		DO UPDATE SET value = sequences.value + 1
		RETURNING value`

	var value int64
	err := r.db.querierFrom(ctx).QueryRow(ctx, query, prefix, dateKey).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s/%s: %w", prefix, dateKey, err)
	}

	return value, nil
}
