// internal/core/ports/database.go
package ports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database abstracts the concrete pgxpool wrapper from callers that need
// basic store access (health checks, the seeder).
type Database interface {
	Pool() *pgxpool.Pool
	Close()
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}
