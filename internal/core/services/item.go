// internal/core/services/item.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolio/stockbook-be/internal/core/domain"
	"github.com/avolio/stockbook-be/internal/core/ports"
)

// ItemService enforces item-level invariants and mediates every write to
// an item's stock ledger.
type ItemService struct {
	repo   ports.ItemRepository
	txm    ports.TxManager
	cache  ports.CacheRepository
	logger *slog.Logger
}

// Statically assert that *ItemService implements the ItemService port.
var _ ports.ItemService = (*ItemService)(nil)

// NewItemService creates a new item service.
func NewItemService(repo ports.ItemRepository, txm ports.TxManager,
	cache ports.CacheRepository, logger *slog.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		txm:    txm,
		cache:  cache,
		logger: logger.With(slog.String("service", "item")),
	}
}

// CreateItem validates and persists a new item. A blank SKU requests
// auto-generation; uniqueness is enforced by the repository at commit.
func (s *ItemService) CreateItem(ctx context.Context, params ports.CreateItemParams) (*domain.Item, error) {
	item := &domain.Item{
		SKU:          params.SKU,
		Name:         params.Name,
		Kind:         params.Kind,
		Category:     params.Category,
		Tags:         params.Tags,
		Measurement:  params.Measurement,
		Unit:         params.Unit,
		Valuation:    params.Valuation,
		MinimumLevel: params.MinimumLevel,
		ReorderPoint: params.ReorderPoint,
		MaximumLevel: params.MaximumLevel,
	}

	var err error
	if item.SKU == "" {
		if item.SKU, err = s.NextSKU(ctx); err != nil {
			return nil, fmt.Errorf("failed to generate sku: %w", err)
		}
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.PrepareForStorage()

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.InfoContext(ctx, "item created",
		slog.String("item_id", item.ItemID.String()),
		slog.String("sku", item.SKU))

	return item, nil
}

// GetByID retrieves an item by ID.
func (s *ItemService) GetByID(ctx context.Context, itemID uuid.UUID) (*domain.Item, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}
	return item, nil
}

// GetBySKU retrieves an item by SKU.
func (s *ItemService) GetBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	item, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to get item by sku: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("sku %s: %w", sku, domain.ErrNotFound)
	}
	return item, nil
}

// List retrieves items with filtering and pagination.
func (s *ItemService) List(ctx context.Context, query ports.ItemQuery) (*ports.ItemListResult, error) {
	items, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return &ports.ItemListResult{
		Items:      items,
		TotalCount: total,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}, nil
}

// DeleteItem deletes an item, soft by default.
func (s *ItemService) DeleteItem(ctx context.Context, itemID uuid.UUID, permanent bool) error {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to check item existence: %w", err)
	}
	if item == nil {
		return fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}

	if permanent {
		err = s.repo.Delete(ctx, itemID)
	} else {
		err = s.repo.SoftDelete(ctx, itemID)
	}
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.invalidateDerived(ctx)
	s.logger.InfoContext(ctx, "item deleted",
		slog.String("item_id", itemID.String()),
		slog.Bool("permanent", permanent))
	return nil
}

// AddInventory records an inflow: a new cost layer at the given unit cost.
func (s *ItemService) AddInventory(ctx context.Context, itemID uuid.UUID,
	qty, unitCost decimal.Decimal, source domain.LayerSource, date time.Time) (*ports.StockMovement, error) {

	var result *ports.StockMovement
	err := s.txm.RunInTx(ctx, func(ctx context.Context) error {
		item, err := s.lockItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := item.AddInflow(qty, unitCost, date, source); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to persist inflow: %w", err)
		}
		result = &ports.StockMovement{
			ItemID:      item.ItemID,
			OnHand:      item.OnHand,
			AverageCost: item.AverageCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateDerived(ctx)
	s.logger.InfoContext(ctx, "inventory added",
		slog.String("item_id", itemID.String()),
		slog.String("qty", qty.String()),
		slog.String("unit_cost", unitCost.String()))
	return result, nil
}

// RemoveInventory records an outflow costed by the item's valuation method.
func (s *ItemService) RemoveInventory(ctx context.Context, itemID uuid.UUID,
	qty decimal.Decimal, date time.Time) (*ports.StockMovement, error) {

	var result *ports.StockMovement
	err := s.txm.RunInTx(ctx, func(ctx context.Context) error {
		item, err := s.lockItem(ctx, itemID)
		if err != nil {
			return err
		}
		cogs, err := item.Consume(qty, date)
		if err != nil {
			return err
		}
		if err := s.repo.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to persist outflow: %w", err)
		}
		result = &ports.StockMovement{
			ItemID:      item.ItemID,
			OnHand:      item.OnHand,
			AverageCost: item.AverageCost,
			COGS:        cogs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateDerived(ctx)
	s.logger.InfoContext(ctx, "inventory removed",
		slog.String("item_id", itemID.String()),
		slog.String("qty", qty.String()),
		slog.String("cogs", result.COGS.String()))
	return result, nil
}

// ReverseInventory restores a prior outflow at the cost it was charged.
func (s *ItemService) ReverseInventory(ctx context.Context, itemID uuid.UUID,
	qty, previousCOGS decimal.Decimal, date time.Time) (*ports.StockMovement, error) {

	var result *ports.StockMovement
	err := s.txm.RunInTx(ctx, func(ctx context.Context) error {
		item, err := s.lockItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := item.Reverse(qty, previousCOGS, date); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to persist reversal: %w", err)
		}
		result = &ports.StockMovement{
			ItemID:      item.ItemID,
			OnHand:      item.OnHand,
			AverageCost: item.AverageCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateDerived(ctx)
	return result, nil
}

// RetractInventory undoes a prior inflow, clamping at zero on-hand when
// part of the inflow has already been consumed.
func (s *ItemService) RetractInventory(ctx context.Context, itemID uuid.UUID,
	qty decimal.Decimal, date time.Time) (*ports.StockMovement, error) {

	var result *ports.StockMovement
	err := s.txm.RunInTx(ctx, func(ctx context.Context) error {
		item, err := s.lockItem(ctx, itemID)
		if err != nil {
			return err
		}
		warning, err := item.Retract(qty, date)
		if err != nil {
			return err
		}
		if err := s.repo.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to persist retraction: %w", err)
		}
		result = &ports.StockMovement{
			ItemID:      item.ItemID,
			OnHand:      item.OnHand,
			AverageCost: item.AverageCost,
		}
		if warning != nil {
			result.Warnings = append(result.Warnings, *warning)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateDerived(ctx)
	return result, nil
}

// UpdateInventorySettings patches thresholds and, optionally, the
// valuation method. Switching valuation with stock on hand requires
// explicit acceptance and surfaces a warning rather than an error.
func (s *ItemService) UpdateInventorySettings(ctx context.Context, itemID uuid.UUID,
	patch ports.InventorySettingsPatch) (*domain.Item, []domain.Warning, error) {

	var updated *domain.Item
	var warnings []domain.Warning
	err := s.txm.RunInTx(ctx, func(ctx context.Context) error {
		item, err := s.lockItem(ctx, itemID)
		if err != nil {
			return err
		}

		if patch.MinimumLevel != nil {
			item.MinimumLevel = *patch.MinimumLevel
		}
		if patch.ReorderPoint != nil {
			item.ReorderPoint = *patch.ReorderPoint
		}
		if patch.MaximumLevel != nil {
			item.MaximumLevel = *patch.MaximumLevel
		}
		item.ClampThresholds()

		if patch.Valuation != nil && *patch.Valuation != item.Valuation {
			switch *patch.Valuation {
			case domain.ValuationFIFO, domain.ValuationLIFO, domain.ValuationWeightedAvg:
			default:
				return domain.FieldError("valuation", "must be FIFO, LIFO or WEIGHTED_AVG")
			}
			if item.OnHand.IsPositive() && !patch.AcceptMixedLedger {
				return domain.FieldError("valuation",
					"cannot switch valuation with stock on hand unless explicitly accepted")
			}
			if item.OnHand.IsPositive() {
				warnings = append(warnings, domain.Warning{
					Code: domain.WarnValuationSwitchMixedStock,
					Message: fmt.Sprintf("valuation switched from %s to %s over a mixed ledger; average cost recomputed from surviving layers",
						item.Valuation, *patch.Valuation),
				})
				item.AverageCost = item.Ledger.WeightedAverage()
			}
			item.Valuation = *patch.Valuation
		}

		if err := s.repo.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to persist settings: %w", err)
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.invalidateDerived(ctx)
	s.logger.InfoContext(ctx, "inventory settings updated",
		slog.String("item_id", itemID.String()),
		slog.Int("warnings", len(warnings)))
	return updated, warnings, nil
}

// NextSKU returns the next auto-generated SKU: one past the highest
// purely-numeric SKU in use, zero-padded to ten digits. Gaps are never
// reused.
func (s *ItemService) NextSKU(ctx context.Context) (string, error) {
	skus, err := s.repo.ListNumericSKUs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list numeric skus: %w", err)
	}

	var max int64
	for _, sku := range skus {
		n, err := strconv.ParseInt(sku, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%010d", max+1), nil
}

// ValuationSummary aggregates on-hand value per category, served from
// cache between stock mutations.
func (s *ItemService) ValuationSummary(ctx context.Context) (*ports.ValuationSummary, error) {
	var summary ports.ValuationSummary
	err := s.cache.GetOrSet(ctx, cacheKeyValuationSummary, &summary, func() (interface{}, error) {
		rows, err := s.repo.ValuationByCategory(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate valuation: %w", err)
		}
		total := decimal.Zero
		for _, r := range rows {
			total = total.Add(r.Value)
		}
		return &ports.ValuationSummary{
			GeneratedAt: time.Now(),
			TotalValue:  total,
			Categories:  rows,
		}, nil
	}, derivedCacheTTL)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ReorderReport lists items at or below their reorder point.
func (s *ItemService) ReorderReport(ctx context.Context) ([]*domain.Item, error) {
	items, _, err := s.repo.List(ctx, ports.ItemQuery{
		NeedsReorder: true,
		SortBy:       "on_hand",
		SortOrder:    "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build reorder report: %w", err)
	}
	return items, nil
}

// lockItem reads an item under its row lock inside the current unit of work.
func (s *ItemService) lockItem(ctx context.Context, itemID uuid.UUID) (*domain.Item, error) {
	item, err := s.repo.FindByIDForUpdate(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}
	return item, nil
}

// invalidateDerived drops cached aggregates once the mutation commits.
// When the call is joined into a wider unit of work the invalidation waits
// for the outermost commit, so a concurrent reader can never repopulate the
// cache from uncommitted state. Cache failures are logged, never surfaced.
func (s *ItemService) invalidateDerived(ctx context.Context) {
	s.txm.AfterCommit(ctx, func(ctx context.Context) {
		if err := s.cache.Delete(ctx, cacheKeyValuationSummary, cacheKeyReorderReport); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate derived cache",
				slog.String("error", err.Error()))
		}
	})
}
