// internal/adapters/db/item_repository.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avolio/stockbook-be/internal/core/domain"
	"github.com/avolio/stockbook-be/internal/core/ports"
)

const pgUniqueViolation = "23505"

// itemRepository implements ports.ItemRepository. The cost ledger is stored
// as a JSONB column on the item row: the row lock taken by FindByIDForUpdate
// covers the whole costing state of an item.
type itemRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *Database, logger *slog.Logger) ports.ItemRepository {
	return &itemRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "item")),
	}
}

const itemColumns = `
	item_id, sku, name, kind, category, tags,
	measurement, unit, on_hand, average_cost, valuation, layers,
	minimum_level, reorder_point, maximum_level,
	last_updated, created_at, updated_at`

// Create inserts a new item
func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (
			item_id, sku, name, kind, category, tags,
			measurement, unit, on_hand, average_cost, valuation, layers,
			minimum_level, reorder_point, maximum_level,
			last_updated, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18
		)`

	layers, err := json.Marshal(item.Ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	_, err = r.db.querierFrom(ctx).Exec(ctx, query,
		item.ItemID, item.SKU, item.Name, item.Kind, item.Category, strings.Join(item.Tags, ","),
		item.Measurement, item.Unit, item.OnHand, item.AverageCost, item.Valuation, layers,
		item.MinimumLevel, item.ReorderPoint, item.MaximumLevel,
		item.LastUpdated, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("sku %s: %w", item.SKU, domain.ErrDuplicateSKU)
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}

	r.logger.DebugContext(ctx, "item inserted",
		slog.String("item_id", item.ItemID.String()),
		slog.String("sku", item.SKU))

	return nil
}

// BulkCreate inserts many items in one round trip
func (r *itemRepository) BulkCreate(ctx context.Context, items []*domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO items (
			item_id, sku, name, kind, category, tags,
			measurement, unit, on_hand, average_cost, valuation, layers,
			minimum_level, reorder_point, maximum_level,
			last_updated, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18
		)`

	batch := &pgx.Batch{}
	for _, item := range items {
		layers, err := json.Marshal(item.Ledger)
		if err != nil {
			return fmt.Errorf("failed to encode ledger for %s: %w", item.SKU, err)
		}
		batch.Queue(query,
			item.ItemID, item.SKU, item.Name, item.Kind, item.Category, strings.Join(item.Tags, ","),
			item.Measurement, item.Unit, item.OnHand, item.AverageCost, item.Valuation, layers,
			item.MinimumLevel, item.ReorderPoint, item.MaximumLevel,
			item.LastUpdated, item.CreatedAt, item.UpdatedAt,
		)
	}

	br := r.db.querierFrom(ctx).SendBatch(ctx, batch)
	defer br.Close()

	for _, item := range items {
		if _, err := br.Exec(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return fmt.Errorf("sku %s: %w", item.SKU, domain.ErrDuplicateSKU)
			}
			return fmt.Errorf("failed to insert item %s: %w", item.SKU, err)
		}
	}

	r.logger.DebugContext(ctx, "items inserted", slog.Int("count", len(items)))

	return nil
}

// Update rewrites the full item row, ledger included
func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE items SET
			sku = $2, name = $3, kind = $4, category = $5, tags = $6,
			measurement = $7, unit = $8, on_hand = $9, average_cost = $10,
			valuation = $11, layers = $12,
			minimum_level = $13, reorder_point = $14, maximum_level = $15,
			last_updated = $16, updated_at = $17
		WHERE item_id = $1 AND deleted_at IS NULL`

	layers, err := json.Marshal(item.Ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	item.UpdatedAt = time.Now()

	tag, err := r.db.querierFrom(ctx).Exec(ctx, query,
		item.ItemID, item.SKU, item.Name, item.Kind, item.Category, strings.Join(item.Tags, ","),
		item.Measurement, item.Unit, item.OnHand, item.AverageCost,
		item.Valuation, layers,
		item.MinimumLevel, item.ReorderPoint, item.MaximumLevel,
		item.LastUpdated, item.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("sku %s: %w", item.SKU, domain.ErrDuplicateSKU)
		}
		return fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", item.ItemID, domain.ErrNotFound)
	}

	return nil
}

// BulkUpdate persists many items in one round trip
func (r *itemRepository) BulkUpdate(ctx context.Context, items []*domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		UPDATE items SET
			on_hand = $2, average_cost = $3, valuation = $4, layers = $5,
			minimum_level = $6, reorder_point = $7, maximum_level = $8,
			last_updated = $9, updated_at = $10
		WHERE item_id = $1 AND deleted_at IS NULL`

	now := time.Now()
	batch := &pgx.Batch{}
	for _, item := range items {
		layers, err := json.Marshal(item.Ledger)
		if err != nil {
			return fmt.Errorf("failed to encode ledger for %s: %w", item.ItemID, err)
		}
		item.UpdatedAt = now
		batch.Queue(query,
			item.ItemID, item.OnHand, item.AverageCost, item.Valuation, layers,
			item.MinimumLevel, item.ReorderPoint, item.MaximumLevel,
			item.LastUpdated, item.UpdatedAt,
		)
	}

	br := r.db.querierFrom(ctx).SendBatch(ctx, batch)
	defer br.Close()

	for _, item := range items {
		tag, err := br.Exec()
		if err != nil {
			return fmt.Errorf("failed to update item %s: %w", item.ItemID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("item %s: %w", item.ItemID, domain.ErrNotFound)
		}
	}

	return nil
}

// FindByID retrieves an item by ID
func (r *itemRepository) FindByID(ctx context.Context, itemID uuid.UUID) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1 AND deleted_at IS NULL`
	return r.scanItem(r.db.querierFrom(ctx).QueryRow(ctx, query, itemID))
}

// FindByIDForUpdate retrieves an item under its row lock. Must run inside a
// unit of work; the lock holds until the surrounding transaction ends.
func (r *itemRepository) FindByIDForUpdate(ctx context.Context, itemID uuid.UUID) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1 AND deleted_at IS NULL FOR UPDATE`
	return r.scanItem(r.db.querierFrom(ctx).QueryRow(ctx, query, itemID))
}

// FindBySKU retrieves an item by SKU
func (r *itemRepository) FindBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE sku = $1 AND deleted_at IS NULL`
	return r.scanItem(r.db.querierFrom(ctx).QueryRow(ctx, query, sku))
}

// List retrieves items with filtering and pagination
func (r *itemRepository) List(ctx context.Context, params ports.ItemQuery) ([]*domain.Item, int64, error) {
	qb := squirrel.Select(
		"item_id", "sku", "name", "kind", "category", "tags",
		"measurement", "unit", "on_hand", "average_cost", "valuation", "layers",
		"minimum_level", "reorder_point", "maximum_level",
		"last_updated", "created_at", "updated_at",
	).From("items").
		Where("deleted_at IS NULL").
		PlaceholderFormat(squirrel.Dollar)

	if params.Search != "" {
		qb = qb.Where("(name ILIKE '%' || ? || '%' OR sku ILIKE '%' || ? || '%')",
			params.Search, params.Search)
	}
	if params.Category != "" {
		qb = qb.Where(squirrel.Eq{"category": params.Category})
	}
	if params.Kind != "" {
		qb = qb.Where(squirrel.Eq{"kind": params.Kind})
	}
	if params.Measurement != "" {
		qb = qb.Where(squirrel.Eq{"measurement": params.Measurement})
	}
	if params.Tag != "" {
		qb = qb.Where("? = ANY(string_to_array(tags, ','))", params.Tag)
	}
	if params.NeedsReorder {
		qb = qb.Where("on_hand <= reorder_point")
	}
	if params.BelowMinimum {
		qb = qb.Where("on_hand < minimum_level")
	}

	countQb := qb.Column("COUNT(*) OVER()").Limit(1)
	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	err = r.db.querierFrom(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount)
	if err != nil && err != pgx.ErrNoRows {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	orderBy := "created_at DESC"
	if params.SortBy != "" {
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}

		switch params.SortBy {
		case "name":
			orderBy = fmt.Sprintf("name %s", direction)
		case "sku":
			orderBy = fmt.Sprintf("sku %s", direction)
		case "on_hand":
			orderBy = fmt.Sprintf("on_hand %s", direction)
		case "value":
			orderBy = fmt.Sprintf("on_hand * average_cost %s", direction)
		case "updated":
			orderBy = fmt.Sprintf("updated_at %s", direction)
		default:
			orderBy = fmt.Sprintf("created_at %s", direction)
		}
	}
	qb = qb.OrderBy(orderBy)

	if params.Limit > 0 {
		qb = qb.Limit(uint64(params.Limit))
	}
	if params.Offset > 0 {
		qb = qb.Offset(uint64(params.Offset))
	}

	listSQL, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.querierFrom(ctx).Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItemRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, totalCount, nil
}

// ListNumericSKUs returns all purely-numeric SKUs for SKU generation
func (r *itemRepository) ListNumericSKUs(ctx context.Context) ([]string, error) {
	query := `SELECT sku FROM items WHERE sku ~ '^[0-9]+$' AND deleted_at IS NULL`

	rows, err := r.db.querierFrom(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query skus: %w", err)
	}
	defer rows.Close()

	var skus []string
	for rows.Next() {
		var sku string
		if err := rows.Scan(&sku); err != nil {
			return nil, fmt.Errorf("failed to scan sku: %w", err)
		}
		skus = append(skus, sku)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return skus, nil
}

// ValuationByCategory aggregates on-hand value per category
func (r *itemRepository) ValuationByCategory(ctx context.Context) ([]ports.CategoryValuation, error) {
	query := `
		SELECT
			COALESCE(NULLIF(category, ''), 'uncategorized') AS category,
			COUNT(*),
			COALESCE(SUM(on_hand), 0),
			COALESCE(SUM(on_hand * average_cost), 0)
		FROM items
		WHERE deleted_at IS NULL
		GROUP BY 1
		ORDER BY 1`

	rows, err := r.db.querierFrom(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate valuation: %w", err)
	}
	defer rows.Close()

	var result []ports.CategoryValuation
	for rows.Next() {
		var row ports.CategoryValuation
		if err := rows.Scan(&row.Category, &row.ItemCount, &row.OnHand, &row.Value); err != nil {
			return nil, fmt.Errorf("failed to scan valuation row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// SoftDelete marks an item as deleted
func (r *itemRepository) SoftDelete(ctx context.Context, itemID uuid.UUID) error {
	query := `UPDATE items SET deleted_at = $2, updated_at = $2 WHERE item_id = $1 AND deleted_at IS NULL`

	now := time.Now()
	tag, err := r.db.querierFrom(ctx).Exec(ctx, query, itemID, now)
	if err != nil {
		return fmt.Errorf("failed to soft delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "item soft deleted",
		slog.String("item_id", itemID.String()))

	return nil
}

// Delete performs a hard delete
func (r *itemRepository) Delete(ctx context.Context, itemID uuid.UUID) error {
	query := `DELETE FROM items WHERE item_id = $1`

	tag, err := r.db.querierFrom(ctx).Exec(ctx, query, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "item deleted",
		slog.String("item_id", itemID.String()))

	return nil
}

// scanItem scans a single item row, mapping no-rows to (nil, nil)
func (r *itemRepository) scanItem(row pgx.Row) (*domain.Item, error) {
	item, err := scanItemRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// scanItemRow scans the itemColumns projection from a row or rows cursor
func scanItemRow(row pgx.Row) (*domain.Item, error) {
	item := &domain.Item{}
	var tagsStr sql.NullString
	var layers []byte

	err := row.Scan(
		&item.ItemID, &item.SKU, &item.Name, &item.Kind, &item.Category, &tagsStr,
		&item.Measurement, &item.Unit, &item.OnHand, &item.AverageCost, &item.Valuation, &layers,
		&item.MinimumLevel, &item.ReorderPoint, &item.MaximumLevel,
		&item.LastUpdated, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}

	if tagsStr.Valid && tagsStr.String != "" {
		item.Tags = strings.Split(tagsStr.String, ",")
	}
	if len(layers) > 0 {
		if err := json.Unmarshal(layers, &item.Ledger); err != nil {
			return nil, fmt.Errorf("failed to decode ledger: %w", err)
		}
	}

	return item, nil
}
