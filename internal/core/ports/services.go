// internal/core/ports/services.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolio/stockbook-be/internal/core/domain"
)

// ItemService is the application service port for items and stock
// movements. Stock-moving operations join the unit of work carried on the
// context when one is present, otherwise they open their own.
type ItemService interface {
	CreateItem(ctx context.Context, params CreateItemParams) (*domain.Item, error)
	GetByID(ctx context.Context, itemID uuid.UUID) (*domain.Item, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Item, error)
	List(ctx context.Context, query ItemQuery) (*ItemListResult, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID, permanent bool) error

	AddInventory(ctx context.Context, itemID uuid.UUID, qty, unitCost decimal.Decimal,
		source domain.LayerSource, date time.Time) (*StockMovement, error)
	RemoveInventory(ctx context.Context, itemID uuid.UUID, qty decimal.Decimal,
		date time.Time) (*StockMovement, error)
	ReverseInventory(ctx context.Context, itemID uuid.UUID, qty, previousCOGS decimal.Decimal,
		date time.Time) (*StockMovement, error)
	RetractInventory(ctx context.Context, itemID uuid.UUID, qty decimal.Decimal,
		date time.Time) (*StockMovement, error)

	UpdateInventorySettings(ctx context.Context, itemID uuid.UUID,
		patch InventorySettingsPatch) (*domain.Item, []domain.Warning, error)
	NextSKU(ctx context.Context) (string, error)
	ValuationSummary(ctx context.Context) (*ValuationSummary, error)
	ReorderReport(ctx context.Context) ([]*domain.Item, error)
}

// CreateItemParams carries the caller-supplied item specification. A blank
// SKU requests auto-generation.
type CreateItemParams struct {
	SKU          string                 `json:"sku"`
	Name         string                 `json:"name"`
	Kind         domain.ItemKind        `json:"kind"`
	Category     string                 `json:"category"`
	Tags         []string               `json:"tags"`
	Measurement  domain.Measurement     `json:"measurement"`
	Unit         string                 `json:"unit"`
	Valuation    domain.ValuationMethod `json:"valuation"`
	MinimumLevel decimal.Decimal        `json:"minimum_level"`
	ReorderPoint decimal.Decimal        `json:"reorder_point"`
	MaximumLevel decimal.Decimal        `json:"maximum_level"`
}

// InventorySettingsPatch updates thresholds and, optionally, the valuation
// method. Switching valuation on a non-empty ledger requires
// AcceptMixedLedger and surfaces a warning.
type InventorySettingsPatch struct {
	MinimumLevel      *decimal.Decimal        `json:"minimum_level,omitempty"`
	ReorderPoint      *decimal.Decimal        `json:"reorder_point,omitempty"`
	MaximumLevel      *decimal.Decimal        `json:"maximum_level,omitempty"`
	Valuation         *domain.ValuationMethod `json:"valuation,omitempty"`
	AcceptMixedLedger bool                    `json:"accept_mixed_ledger,omitempty"`
}

// StockMovement is the result of a single inventory mutation.
type StockMovement struct {
	ItemID      uuid.UUID        `json:"item_id"`
	OnHand      decimal.Decimal  `json:"on_hand"`
	AverageCost decimal.Decimal  `json:"average_cost"`
	COGS        decimal.Decimal  `json:"cogs,omitempty"`
	Warnings    []domain.Warning `json:"warnings,omitempty"`
}

// ItemListResult pages item listings.
type ItemListResult struct {
	Items      []*domain.Item `json:"items"`
	TotalCount int64          `json:"total_count"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
}

// ValuationSummary aggregates on-hand value across the catalogue.
type ValuationSummary struct {
	GeneratedAt time.Time           `json:"generated_at"`
	TotalValue  decimal.Decimal     `json:"total_value"`
	Categories  []CategoryValuation `json:"categories"`
}

// TransactionEngine drives purchase and sale lifecycles, translating
// status transitions into stock effects.
type TransactionEngine interface {
	CreateTransaction(ctx context.Context, kind domain.TransactionKind,
		params CreateTransactionParams) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id uuid.UUID,
		patch UpdateTransactionParams) (*domain.Transaction, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, newStatus domain.TransactionStatus,
		applyStockEffects bool) (*TransitionResult, error)
	RecordPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal,
		method string, date time.Time) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) ([]domain.Warning, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.Transaction, error)
	FindByParty(ctx context.Context, partyID uuid.UUID, query TransactionQuery) (*TransactionListResult, error)
}

// CreateTransactionParams carries a new transaction's lines and pricing.
type CreateTransactionParams struct {
	CounterpartyID uuid.UUID         `json:"counterparty_id"`
	Date           time.Time         `json:"date"`
	Lines          []domain.LineItem `json:"lines"`
	DiscountPct    decimal.Decimal   `json:"discount_pct"`
	TaxRatePct     decimal.Decimal   `json:"tax_rate_pct"`
	Shipping       decimal.Decimal   `json:"shipping"`
	Notes          string            `json:"notes"`
}

// UpdateTransactionParams patches a DRAFT or PENDING transaction.
type UpdateTransactionParams struct {
	CounterpartyID *uuid.UUID        `json:"counterparty_id,omitempty"`
	Date           *time.Time        `json:"date,omitempty"`
	Lines          []domain.LineItem `json:"lines,omitempty"`
	DiscountPct    *decimal.Decimal  `json:"discount_pct,omitempty"`
	TaxRatePct     *decimal.Decimal  `json:"tax_rate_pct,omitempty"`
	Shipping       *decimal.Decimal  `json:"shipping,omitempty"`
	Notes          *string           `json:"notes,omitempty"`
}

// TransitionResult reports a status change together with any warnings
// raised while applying or reversing stock effects.
type TransitionResult struct {
	Transaction *domain.Transaction `json:"transaction"`
	Warnings    []domain.Warning    `json:"warnings,omitempty"`
}

// TransactionListResult pages transaction listings.
type TransactionListResult struct {
	Transactions []*domain.Transaction `json:"transactions"`
	TotalCount   int64                 `json:"total_count"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}
