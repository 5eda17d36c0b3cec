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

func newTransactionHandler(t *testing.T) (*handlers.TransactionHandler, *mocks.MockTransactionEngine) {
	t.Helper()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockTransactionEngine(ctrl)
	return handlers.NewTransactionHandler(engine, helpers.TestLogger()), engine
}

func serveTransaction(h *handlers.TransactionHandler, method, target string, body interface{}) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/transactions", h.CreateTransaction)
	mux.HandleFunc("GET /api/v1/transactions/{id}", h.GetTransaction)
	mux.HandleFunc("PUT /api/v1/transactions/{id}", h.UpdateTransaction)
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", h.DeleteTransaction)
	mux.HandleFunc("POST /api/v1/transactions/{id}/status", h.ChangeStatus)
	mux.HandleFunc("POST /api/v1/transactions/{id}/payments", h.RecordPayment)
	mux.HandleFunc("GET /api/v1/parties/{id}/transactions", h.ListByParty)

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

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	handler, engine := newTransactionHandler(t)

	tx := helpers.CreateTestTransaction()
	engine.EXPECT().
		CreateTransaction(gomock.Any(), domain.KindPurchase, gomock.Any()).
		Return(tx, nil)

	rec := serveTransaction(handler, http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"kind":            "PURCHASE",
		"counterparty_id": uuid.New().String(),
		"lines": []map[string]interface{}{
			{"item_id": uuid.New().String(), "quantity": "10", "unit_price": "2.50"},
		},
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got domain.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, tx.ExternalID, got.ExternalID)
}

func TestTransactionHandler_CreateTransaction_BadKind(t *testing.T) {
	handler, _ := newTransactionHandler(t)

	rec := serveTransaction(handler, http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"kind": "TRANSFER",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "PURCHASE or SALE")
}

func TestTransactionHandler_CreateTransaction_EmptyLines(t *testing.T) {
	handler, engine := newTransactionHandler(t)

	engine.EXPECT().
		CreateTransaction(gomock.Any(), domain.KindSale, gomock.Any()).
		Return(nil, domain.FieldError("lines", "at least one line is required"))

	rec := serveTransaction(handler, http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"kind": "SALE",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionHandler_GetTransaction_ByExternalID(t *testing.T) {
	handler, engine := newTransactionHandler(t)

	tx := helpers.CreateTestTransaction()
	engine.EXPECT().FindByExternalID(gomock.Any(), tx.ExternalID).Return(tx, nil)

	rec := serveTransaction(handler, http.MethodGet, "/api/v1/transactions/"+tx.ExternalID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTransactionHandler_ChangeStatus(t *testing.T) {
	handler, engine := newTransactionHandler(t)

	tx := helpers.CreateTestTransaction(func(tr *domain.Transaction) {
		tr.Status = domain.StatusConfirmed
	})
	engine.EXPECT().
		ChangeStatus(gomock.Any(), tx.ID, domain.StatusConfirmed, true).
		Return(&ports.TransitionResult{Transaction: tx}, nil)

	rec := serveTransaction(handler, http.MethodPost,
		"/api/v1/transactions/"+tx.ID.String()+"/status",
		handlers.ChangeStatusRequest{Status: "CONFIRMED"})

	assert.Equal(t, http.StatusOK, rec.Code)

	var result ports.TransitionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, domain.StatusConfirmed, result.Transaction.Status)
}

func TestTransactionHandler_ChangeStatus_Illegal(t *testing.T) {
	handler, engine := newTransactionHandler(t)

	id := uuid.New()
	engine.EXPECT().
		ChangeStatus(gomock.Any(), id, domain.StatusDraft, true).
		Return(nil, fmt.Errorf("CANCELLED -> DRAFT: %w", domain.ErrIllegalTransition))

	rec := serveTransaction(handler, http.MethodPost,
		"/api/v1/transactions/"+id.String()+"/status",
		handlers.ChangeStatusRequest{Status: "DRAFT"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransactionHandler_ChangeStatus_MissingStatus(t *testing.T) {
	handler, _ := newTransactionHandler(t)

	rec := serveTransaction(handler, http.MethodPost,
		"/api/v1/transactions/"+uuid.NewString()+"/status",
		handlers.ChangeStatusRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionHandler_RecordPayment(t *testing.T) {
	handler, engine := newTransactionHandler(t)

	tx := helpers.CreateTestTransaction(func(tr *domain.Transaction) {
		tr.AmountPaid = decimal.NewFromInt(10)
		tr.PaymentStatus = domain.PaymentPartial
	})
	engine.EXPECT().
		RecordPayment(gomock.Any(), tx.ID, gomock.Any(), "bank_transfer", gomock.Any()).
		Return(tx, nil)

	rec := serveTransaction(handler, http.MethodPost,
		"/api/v1/transactions/"+tx.ID.String()+"/payments",
		handlers.RecordPaymentRequest{
			Amount: decimal.NewFromInt(10),
			Method: "bank_transfer",
		})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTransactionHandler_RecordPayment_Terminal(t *testing.T) {
	handler, engine := newTransactionHandler(t)

	id := uuid.New()
	engine.EXPECT().
		RecordPayment(gomock.Any(), id, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("transaction is CANCELLED: %w", domain.ErrConflict))

	rec := serveTransaction(handler, http.MethodPost,
		"/api/v1/transactions/"+id.String()+"/payments",
		handlers.RecordPaymentRequest{Amount: decimal.NewFromInt(5), Method: "cash"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransactionHandler_DeleteTransaction_SurfacesWarnings(t *testing.T) {
	handler, engine := newTransactionHandler(t)

	id := uuid.New()
	warnings := []domain.Warning{{
		Code:    domain.WarnStockAlreadyConsumed,
		Message: "stock already consumed, on-hand clamped at zero",
	}}
	engine.EXPECT().DeleteTransaction(gomock.Any(), id).Return(warnings, nil)

	rec := serveTransaction(handler, http.MethodDelete, "/api/v1/transactions/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.WarnStockAlreadyConsumed)
}

func TestTransactionHandler_ListByParty_ParsesQuery(t *testing.T) {
	handler, engine := newTransactionHandler(t)

	partyID := uuid.New()
	engine.EXPECT().
		FindByParty(gomock.Any(), partyID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, query ports.TransactionQuery) (*ports.TransactionListResult, error) {
			assert.Equal(t, domain.KindSale, query.Kind)
			assert.Equal(t, domain.StatusConfirmed, query.Status)
			assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), query.DateFrom)
			assert.Equal(t, 25, query.Limit)
			return &ports.TransactionListResult{}, nil
		})

	rec := serveTransaction(handler, http.MethodGet,
		"/api/v1/parties/"+partyID.String()+"/transactions?kind=SALE&status=CONFIRMED&date_from=2025-08-01&limit=25", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
