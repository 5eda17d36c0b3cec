// internal/adapters/db/uow.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avolio/stockbook-be/internal/core/ports"
)

type txCtxKey struct{}
type txHooksKey struct{}

// txHooks collects callbacks to run once the outermost transaction commits.
// A unit of work runs on one goroutine, so no locking.
type txHooks struct {
	fns []func(ctx context.Context)
}

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
// Repositories run against whichever the context supplies.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// txFromContext returns the transaction carried by the unit of work, if any.
func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txCtxKey{}).(pgx.Tx)
	return tx, ok
}

// querierFrom resolves the executor for a repository call: the open
// transaction when one is on the context, the pool otherwise.
func (db *Database) querierFrom(ctx context.Context) querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db.pool
}

const (
	txMaxAttempts     = 5
	txInitialBackoff  = 10 * time.Millisecond
	txBackoffFactor   = 2
	sqlstateSerialize = "40001"
	sqlstateDeadlock  = "40P01"
)

// TxManager implements ports.TxManager over pgx transactions. Nested RunInTx
// calls flat-join the outer transaction; there are no savepoints, so an inner
// failure aborts the whole unit of work. Serialization failures and deadlocks
// restart the function from the top with exponential backoff.
type TxManager struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.TxManager = (*TxManager)(nil)

// NewTxManager creates a new transaction manager.
func NewTxManager(db *Database, logger *slog.Logger) *TxManager {
	return &TxManager{
		db:     db,
		logger: logger.With(slog.String("component", "tx_manager")),
	}
}

// RunInTx executes fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise, including on panic.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		// Already inside a unit of work: join it. The caller that opened
		// the transaction owns commit and rollback.
		return fn(ctx)
	}

	backoff := txInitialBackoff
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = m.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}

		m.logger.WarnContext(ctx, "transaction restarted after serialization failure",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= txBackoffFactor
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

func (m *TxManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	// A fresh hook list per attempt: hooks registered by an attempt that
	// rolls back or retries are discarded with it.
	hooks := &txHooks{}
	txCtx := context.WithValue(ctx, txCtxKey{}, tx)
	txCtx = context.WithValue(txCtx, txHooksKey{}, hooks)
	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("tx failed: %v, rollback failed: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Hooks run on the caller's context, outside the finished transaction.
	for _, hook := range hooks.fns {
		hook(ctx)
	}
	return nil
}

// AfterCommit defers fn to the outermost commit of the unit of work on ctx,
// or runs it immediately when ctx carries none.
func (m *TxManager) AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	if hooks, ok := ctx.Value(txHooksKey{}).(*txHooks); ok {
		hooks.fns = append(hooks.fns, fn)
		return
	}
	fn(ctx)
}

// isRetryable reports whether the error is a transient transaction conflict.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlstateSerialize || pgErr.Code == sqlstateDeadlock
	}
	return false
}
