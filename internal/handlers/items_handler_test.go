package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/avolio/stockbook-be/internal/core/domain"
	"github.com/avolio/stockbook-be/internal/core/ports"
	"github.com/avolio/stockbook-be/internal/handlers"
	"github.com/avolio/stockbook-be/test/helpers"
	"github.com/avolio/stockbook-be/test/mocks"
)

func newItemHandler(t *testing.T) (*handlers.ItemHandler, *mocks.MockItemService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	service := mocks.NewMockItemService(ctrl)
	return handlers.NewItemHandler(service, helpers.TestLogger()), service
}

// newRequest builds a request routed through a mux so PathValue works.
func serveItem(h *handlers.ItemHandler, method, target string, body interface{}) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/items/next-sku", h.NextSKU)
	mux.HandleFunc("POST /api/v1/items", h.CreateItem)
	mux.HandleFunc("GET /api/v1/items", h.ListItems)
	mux.HandleFunc("GET /api/v1/items/{id}", h.GetItem)
	mux.HandleFunc("DELETE /api/v1/items/{id}", h.DeleteItem)
	mux.HandleFunc("GET /api/v1/items/sku/{sku}", h.GetItemBySKU)
	mux.HandleFunc("POST /api/v1/items/{id}/stock/add", h.AddStock)
	mux.HandleFunc("POST /api/v1/items/{id}/stock/remove", h.RemoveStock)
	mux.HandleFunc("PATCH /api/v1/items/{id}/settings", h.UpdateSettings)
	mux.HandleFunc("GET /api/v1/valuation/summary", h.ValuationSummary)
	mux.HandleFunc("GET /api/v1/valuation/reorder", h.ReorderReport)

	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestItemHandler_CreateItem(t *testing.T) {
	handler, service := newItemHandler(t)

	item := helpers.CreateTestItem()
	service.EXPECT().
		CreateItem(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params ports.CreateItemParams) (*domain.Item, error) {
			assert.Equal(t, "Cold-Rolled Steel Sheet", params.Name)
			return item, nil
		})

	rec := serveItem(handler, http.MethodPost, "/api/v1/items", ports.CreateItemParams{
		Name:        "Cold-Rolled Steel Sheet",
		Kind:        domain.KindProduct,
		Measurement: domain.MeasurementWeight,
		Unit:        "kg",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, item.SKU, got.SKU)
}

func TestItemHandler_CreateItem_ValidationError(t *testing.T) {
	handler, service := newItemHandler(t)

	service.EXPECT().
		CreateItem(gomock.Any(), gomock.Any()).
		Return(nil, domain.FieldError("unit", "not valid for measurement weight"))

	rec := serveItem(handler, http.MethodPost, "/api/v1/items", ports.CreateItemParams{
		Name: "Bad Unit", Unit: "m",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unit")
}

func TestItemHandler_CreateItem_DuplicateSKU(t *testing.T) {
	handler, service := newItemHandler(t)

	service.EXPECT().
		CreateItem(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("sku 0000000042: %w", domain.ErrDuplicateSKU))

	rec := serveItem(handler, http.MethodPost, "/api/v1/items", ports.CreateItemParams{
		SKU: "0000000042", Name: "Duplicate",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestItemHandler_GetItem(t *testing.T) {
	handler, service := newItemHandler(t)

	item := helpers.CreateTestItem()
	service.EXPECT().GetByID(gomock.Any(), item.ItemID).Return(item, nil)

	rec := serveItem(handler, http.MethodGet, "/api/v1/items/"+item.ItemID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestItemHandler_GetItem_NotFound(t *testing.T) {
	handler, service := newItemHandler(t)

	id := uuid.New()
	service.EXPECT().GetByID(gomock.Any(), id).
		Return(nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound))

	rec := serveItem(handler, http.MethodGet, "/api/v1/items/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemHandler_GetItem_BadID(t *testing.T) {
	handler, _ := newItemHandler(t)

	rec := serveItem(handler, http.MethodGet, "/api/v1/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemHandler_ListItems_ParsesQuery(t *testing.T) {
	handler, service := newItemHandler(t)

	service.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, query ports.ItemQuery) (*ports.ItemListResult, error) {
			assert.Equal(t, "raw-materials", query.Category)
			assert.True(t, query.NeedsReorder)
			assert.Equal(t, 10, query.Limit)
			assert.Equal(t, 20, query.Offset)
			assert.Equal(t, "sku", query.SortBy)
			assert.Equal(t, "asc", query.SortOrder)
			return &ports.ItemListResult{Items: nil, TotalCount: 0, Limit: 10, Offset: 20}, nil
		})

	rec := serveItem(handler, http.MethodGet,
		"/api/v1/items?category=raw-materials&needs_reorder=true&limit=10&offset=20&sort=sku&order=asc", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestItemHandler_ListItems_CapsLimit(t *testing.T) {
	handler, service := newItemHandler(t)

	service.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, query ports.ItemQuery) (*ports.ItemListResult, error) {
			assert.Equal(t, 100, query.Limit)
			return &ports.ItemListResult{}, nil
		})

	rec := serveItem(handler, http.MethodGet, "/api/v1/items?limit=500", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestItemHandler_AddStock(t *testing.T) {
	handler, service := newItemHandler(t)

	id := uuid.New()
	service.EXPECT().
		AddInventory(gomock.Any(), id, gomock.Any(), gomock.Any(), domain.SourcePurchase, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, qty, unitCost decimal.Decimal,
			_ domain.LayerSource, _ time.Time) (*ports.StockMovement, error) {
			assert.True(t, qty.Equal(decimal.NewFromInt(10)))
			assert.True(t, unitCost.Equal(decimal.RequireFromString("2.5")))
			return &ports.StockMovement{ItemID: id, OnHand: decimal.NewFromInt(35)}, nil
		})

	rec := serveItem(handler, http.MethodPost, "/api/v1/items/"+id.String()+"/stock/add",
		handlers.StockMovementRequest{
			Quantity: decimal.NewFromInt(10),
			UnitCost: decimal.RequireFromString("2.5"),
			Source:   string(domain.SourcePurchase),
		})

	assert.Equal(t, http.StatusOK, rec.Code)

	var movement ports.StockMovement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movement))
	assert.True(t, movement.OnHand.Equal(decimal.NewFromInt(35)))
}

func TestItemHandler_RemoveStock_Insufficient(t *testing.T) {
	handler, service := newItemHandler(t)

	id := uuid.New()
	service.EXPECT().
		RemoveInventory(gomock.Any(), id, gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("remove 100: %w", domain.ErrInsufficientStock))

	rec := serveItem(handler, http.MethodPost, "/api/v1/items/"+id.String()+"/stock/remove",
		handlers.StockMovementRequest{Quantity: decimal.NewFromInt(100)})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestItemHandler_UpdateSettings_ReturnsWarnings(t *testing.T) {
	handler, service := newItemHandler(t)

	item := helpers.CreateTestItem()
	warnings := []domain.Warning{{
		Code:    domain.WarnValuationSwitchMixedStock,
		Message: "valuation method changed with stock on hand",
	}}
	service.EXPECT().
		UpdateInventorySettings(gomock.Any(), item.ItemID, gomock.Any()).
		Return(item, warnings, nil)

	avg := domain.ValuationWeightedAvg
	rec := serveItem(handler, http.MethodPatch, "/api/v1/items/"+item.ItemID.String()+"/settings",
		ports.InventorySettingsPatch{Valuation: &avg, AcceptMixedLedger: true})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.WarnValuationSwitchMixedStock)
}

func TestItemHandler_NextSKU(t *testing.T) {
	handler, service := newItemHandler(t)

	service.EXPECT().NextSKU(gomock.Any()).Return("0000000018", nil)

	rec := serveItem(handler, http.MethodGet, "/api/v1/items/next-sku", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "0000000018", body["sku"])
}

func TestItemHandler_ValuationSummary(t *testing.T) {
	handler, service := newItemHandler(t)

	service.EXPECT().ValuationSummary(gomock.Any()).Return(&ports.ValuationSummary{
		GeneratedAt: time.Now(),
		TotalValue:  decimal.NewFromInt(154),
	}, nil)

	rec := serveItem(handler, http.MethodGet, "/api/v1/valuation/summary", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var summary ports.ValuationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(154)))
}

func TestItemHandler_DeleteItem_Permanent(t *testing.T) {
	handler, service := newItemHandler(t)

	id := uuid.New()
	service.EXPECT().DeleteItem(gomock.Any(), id, true).Return(nil)

	rec := serveItem(handler, http.MethodDelete, "/api/v1/items/"+id.String()+"?permanent=true", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
