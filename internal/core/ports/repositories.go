// internal/core/ports/repositories.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolio/stockbook-be/internal/core/domain"
)

// ItemRepository is the persistence port for items and their cost ledgers.
// Find methods return (nil, nil) when the record is absent. Every method
// participates in the unit of work carried on the context, when present.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	// BulkCreate inserts many items in one round trip. The batch is
	// all-or-nothing inside a unit of work.
	BulkCreate(ctx context.Context, items []*domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	BulkUpdate(ctx context.Context, items []*domain.Item) error
	FindByID(ctx context.Context, itemID uuid.UUID) (*domain.Item, error)
	// FindByIDForUpdate acquires the item's row lock for the duration of
	// the surrounding unit of work. Callers locking multiple items must
	// do so in ascending itemID order.
	FindByIDForUpdate(ctx context.Context, itemID uuid.UUID) (*domain.Item, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Item, error)
	List(ctx context.Context, query ItemQuery) ([]*domain.Item, int64, error)
	// ListNumericSKUs returns all purely-numeric SKUs, used for SKU
	// auto-generation.
	ListNumericSKUs(ctx context.Context) ([]string, error)
	ValuationByCategory(ctx context.Context) ([]CategoryValuation, error)
	SoftDelete(ctx context.Context, itemID uuid.UUID) error
	Delete(ctx context.Context, itemID uuid.UUID) error
}

// ItemQuery holds list filters for items.
type ItemQuery struct {
	Search       string
	Category     string
	Kind         string
	Measurement  string
	Tag          string
	NeedsReorder bool
	BelowMinimum bool
	SortBy       string
	SortOrder    string
	Limit        int
	Offset       int
}

// CategoryValuation is one row of the inventory valuation aggregate.
type CategoryValuation struct {
	Category  string          `json:"category"`
	ItemCount int64           `json:"item_count"`
	OnHand    decimal.Decimal `json:"on_hand"`
	Value     decimal.Decimal `json:"value"`
}

// TransactionRepository is the persistence port for purchases and sales.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	Update(ctx context.Context, tx *domain.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.Transaction, error)
	FindByParty(ctx context.Context, partyID uuid.UUID, query TransactionQuery) ([]*domain.Transaction, int64, error)
	List(ctx context.Context, query TransactionQuery) ([]*domain.Transaction, int64, error)
}

// TransactionQuery holds list filters for transactions.
type TransactionQuery struct {
	Kind      domain.TransactionKind
	Status    domain.TransactionStatus
	DateFrom  time.Time
	DateTo    time.Time
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// SequenceRepository hands out atomic monotonic counters for external
// transaction IDs of the form PREFIX + YYMMDD + NNNN.
type SequenceRepository interface {
	Next(ctx context.Context, prefix, dateKey string) (int64, error)
}
