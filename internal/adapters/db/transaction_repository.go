// internal/adapters/db/transaction_repository.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avolio/stockbook-be/internal/core/domain"
	"github.com/avolio/stockbook-be/internal/core/ports"
)

// transactionRepository implements ports.TransactionRepository. Lines and
// payments are JSONB columns: a transaction and its lines are one row, one
// lock, one write.
type transactionRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *Database, logger *slog.Logger) ports.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "transaction")),
	}
}

const transactionColumns = `
	id, external_id, kind, counterparty_id, date, status, payment_status,
	lines, payments, subtotal, discount_pct, tax_rate_pct, shipping,
	total, amount_paid, notes, created_at, updated_at`

// Create inserts a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, external_id, kind, counterparty_id, date, status, payment_status,
			lines, payments, subtotal, discount_pct, tax_rate_pct, shipping,
			total, amount_paid, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18
		)`

	lines, payments, err := encodeLinesPayments(tx)
	if err != nil {
		return err
	}

	_, err = r.db.querierFrom(ctx).Exec(ctx, query,
		tx.ID, tx.ExternalID, tx.Kind, tx.CounterpartyID, tx.Date, tx.Status, tx.PaymentStatus,
		lines, payments, tx.Subtotal, tx.DiscountPct, tx.TaxRatePct, tx.Shipping,
		tx.Total, tx.AmountPaid, tx.Notes, tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("external id %s: %w", tx.ExternalID, domain.ErrDuplicateExternalID)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	r.logger.DebugContext(ctx, "transaction inserted",
		slog.String("transaction_id", tx.ID.String()),
		slog.String("external_id", tx.ExternalID))

	return nil
}

// Update rewrites the full transaction row
func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE transactions SET
			counterparty_id = $2, date = $3, status = $4, payment_status = $5,
			lines = $6, payments = $7, subtotal = $8, discount_pct = $9,
			tax_rate_pct = $10, shipping = $11, total = $12, amount_paid = $13,
			notes = $14, updated_at = $15
		WHERE id = $1`

	lines, payments, err := encodeLinesPayments(tx)
	if err != nil {
		return err
	}
	tx.UpdatedAt = time.Now()

	tag, err := r.db.querierFrom(ctx).Exec(ctx, query,
		tx.ID, tx.CounterpartyID, tx.Date, tx.Status, tx.PaymentStatus,
		lines, payments, tx.Subtotal, tx.DiscountPct,
		tx.TaxRatePct, tx.Shipping, tx.Total, tx.AmountPaid,
		tx.Notes, tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a transaction
func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM transactions WHERE id = $1`

	tag, err := r.db.querierFrom(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "transaction deleted",
		slog.String("transaction_id", id.String()))

	return nil
}

// FindByID retrieves a transaction by ID
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.scanTransaction(r.db.querierFrom(ctx).QueryRow(ctx, query, id))
}

// FindByIDForUpdate retrieves a transaction under its row lock
func (r *transactionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	return r.scanTransaction(r.db.querierFrom(ctx).QueryRow(ctx, query, id))
}

// FindByExternalID retrieves a transaction by its human-readable ID
func (r *transactionRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE external_id = $1`
	return r.scanTransaction(r.db.querierFrom(ctx).QueryRow(ctx, query, externalID))
}

// FindByParty lists transactions for one counterparty
func (r *transactionRepository) FindByParty(ctx context.Context, partyID uuid.UUID, params ports.TransactionQuery) ([]*domain.Transaction, int64, error) {
	return r.findByQuery(ctx, params, squirrel.Eq{"counterparty_id": partyID})
}

// List retrieves transactions with filtering and pagination
func (r *transactionRepository) List(ctx context.Context, params ports.TransactionQuery) ([]*domain.Transaction, int64, error) {
	return r.findByQuery(ctx, params, nil)
}

func (r *transactionRepository) findByQuery(ctx context.Context, params ports.TransactionQuery, extra squirrel.Sqlizer) ([]*domain.Transaction, int64, error) {
	qb := squirrel.Select(
		"id", "external_id", "kind", "counterparty_id", "date", "status", "payment_status",
		"lines", "payments", "subtotal", "discount_pct", "tax_rate_pct", "shipping",
		"total", "amount_paid", "notes", "created_at", "updated_at",
	).From("transactions").
		PlaceholderFormat(squirrel.Dollar)

	if extra != nil {
		qb = qb.Where(extra)
	}
	if params.Kind != "" {
		qb = qb.Where(squirrel.Eq{"kind": params.Kind})
	}
	if params.Status != "" {
		qb = qb.Where(squirrel.Eq{"status": params.Status})
	}
	if !params.DateFrom.IsZero() {
		qb = qb.Where(squirrel.GtOrEq{"date": params.DateFrom})
	}
	if !params.DateTo.IsZero() {
		qb = qb.Where(squirrel.LtOrEq{"date": params.DateTo})
	}

	countQb := qb.Column("COUNT(*) OVER()").Limit(1)
	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	err = r.db.querierFrom(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount)
	if err != nil && err != pgx.ErrNoRows {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	orderBy := "date DESC"
	if params.SortBy != "" {
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}

		switch params.SortBy {
		case "external_id":
			orderBy = fmt.Sprintf("external_id %s", direction)
		case "total":
			orderBy = fmt.Sprintf("total %s", direction)
		case "status":
			orderBy = fmt.Sprintf("status %s", direction)
		case "updated":
			orderBy = fmt.Sprintf("updated_at %s", direction)
		default:
			orderBy = fmt.Sprintf("date %s", direction)
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
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransactionRow(rows)
		if err != nil {
			return nil, 0, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return txs, totalCount, nil
}

func (r *transactionRepository) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	tx, err := scanTransactionRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tx, nil
}

func scanTransactionRow(row pgx.Row) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	var lines, payments []byte
	var notes sql.NullString

	err := row.Scan(
		&tx.ID, &tx.ExternalID, &tx.Kind, &tx.CounterpartyID, &tx.Date, &tx.Status, &tx.PaymentStatus,
		&lines, &payments, &tx.Subtotal, &tx.DiscountPct, &tx.TaxRatePct, &tx.Shipping,
		&tx.Total, &tx.AmountPaid, &notes, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.Notes = notes.String
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &tx.Lines); err != nil {
			return nil, fmt.Errorf("failed to decode lines: %w", err)
		}
	}
	if len(payments) > 0 {
		if err := json.Unmarshal(payments, &tx.Payments); err != nil {
			return nil, fmt.Errorf("failed to decode payments: %w", err)
		}
	}

	return tx, nil
}

func encodeLinesPayments(tx *domain.Transaction) ([]byte, []byte, error) {
	lines, err := json.Marshal(tx.Lines)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode lines: %w", err)
	}
	payments, err := json.Marshal(tx.Payments)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode payments: %w", err)
	}
	return lines, payments, nil
}
