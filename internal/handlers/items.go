// internal/handlers/items.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolio/stockbook-be/internal/core/domain"
	"github.com/avolio/stockbook-be/internal/core/ports"
)

// ItemHandler handles item and stock-movement HTTP requests
type ItemHandler struct {
	service ports.ItemService
	logger  *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(service ports.ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "items")),
	}
}

// CreateItem handles POST /api/v1/items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var params ports.CreateItemParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.service.CreateItem(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create item",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "item created",
		slog.String("item_id", item.ItemID.String()),
		slog.String("sku", item.SKU))

	respondJSON(w, h.logger, http.StatusCreated, item)
}

// GetItem handles GET /api/v1/items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	item, err := h.service.GetByID(ctx, itemID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, item)
}

// GetItemBySKU handles GET /api/v1/items/sku/{sku}
func (h *ItemHandler) GetItemBySKU(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	item, err := h.service.GetBySKU(ctx, r.PathValue("sku"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, item)
}

// ListItems handles GET /api/v1/items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.List(ctx, h.parseListParams(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list items",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// DeleteItem handles DELETE /api/v1/items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	permanent := r.URL.Query().Get("permanent") == "true"

	if err := h.service.DeleteItem(ctx, itemID, permanent); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "item deleted",
		slog.String("item_id", itemID.String()),
		slog.Bool("permanent", permanent))

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":   "Item deleted successfully",
		"item_id":   itemID.String(),
		"permanent": permanent,
	})
}

// StockMovementRequest is the request body for stock add/remove operations
type StockMovementRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost,omitempty"`
	Source   string          `json:"source,omitempty"`
	Date     *time.Time      `json:"date,omitempty"`
}

func (req *StockMovementRequest) date() time.Time {
	if req.Date != nil {
		return *req.Date
	}
	return time.Now()
}

// AddStock handles POST /api/v1/items/{id}/stock/add
func (h *ItemHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var req StockMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	source := domain.LayerSource(req.Source)
	if source == "" {
		source = domain.SourceAdjustment
	}

	movement, err := h.service.AddInventory(ctx, itemID, req.Quantity, req.UnitCost, source, req.date())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to add stock",
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, movement)
}

// RemoveStock handles POST /api/v1/items/{id}/stock/remove
func (h *ItemHandler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var req StockMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	movement, err := h.service.RemoveInventory(ctx, itemID, req.Quantity, req.date())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to remove stock",
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, movement)
}

// UpdateSettings handles PATCH /api/v1/items/{id}/settings
func (h *ItemHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var patch ports.InventorySettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, warnings, err := h.service.UpdateInventorySettings(ctx, itemID, patch)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"item":     item,
		"warnings": warnings,
	})
}

// NextSKU handles GET /api/v1/items/next-sku
func (h *ItemHandler) NextSKU(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sku, err := h.service.NextSKU(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate next sku",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{"sku": sku})
}

// ValuationSummary handles GET /api/v1/valuation/summary
func (h *ItemHandler) ValuationSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.ValuationSummary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build valuation summary",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, summary)
}

// ReorderReport handles GET /api/v1/valuation/reorder
func (h *ItemHandler) ReorderReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.service.ReorderReport(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build reorder report",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// parseListParams parses query parameters for listing items
func (h *ItemHandler) parseListParams(r *http.Request) ports.ItemQuery {
	query := ports.ItemQuery{
		SortBy:    "created_at",
		SortOrder: "desc",
		Limit:     50,
	}

	q := r.URL.Query()

	if limit := q.Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 100 {
				l = 100
			}
			query.Limit = l
		}
	}

	if offset := q.Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			query.Offset = o
		}
	}

	query.Search = q.Get("search")
	query.Category = q.Get("category")
	query.Kind = q.Get("kind")
	query.Measurement = q.Get("measurement")
	query.Tag = q.Get("tag")

	if needsReorder := q.Get("needs_reorder"); needsReorder != "" {
		if val, err := strconv.ParseBool(needsReorder); err == nil {
			query.NeedsReorder = val
		}
	}

	if belowMin := q.Get("below_minimum"); belowMin != "" {
		if val, err := strconv.ParseBool(belowMin); err == nil {
			query.BelowMinimum = val
		}
	}

	if sortBy := q.Get("sort"); sortBy != "" {
		query.SortBy = sortBy
	}

	if order := q.Get("order"); order == "asc" || order == "desc" {
		query.SortOrder = order
	}

	return query
}
