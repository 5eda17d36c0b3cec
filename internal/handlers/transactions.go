// internal/handlers/transactions.go
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

// TransactionHandler handles purchase and sale HTTP requests
type TransactionHandler struct {
	engine ports.TransactionEngine
	logger *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(engine ports.TransactionEngine, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		engine: engine,
		logger: logger.With(slog.String("handler", "transactions")),
	}
}

// CreateTransactionRequest is the request body for creating a transaction
type CreateTransactionRequest struct {
	Kind string `json:"kind"`
	ports.CreateTransactionParams
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	kind := domain.TransactionKind(req.Kind)
	if kind != domain.KindPurchase && kind != domain.KindSale {
		respondError(w, h.logger, http.StatusBadRequest, "kind must be PURCHASE or SALE")
		return
	}

	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	tx, err := h.engine.CreateTransaction(ctx, kind, req.CreateTransactionParams)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create transaction",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "transaction created",
		slog.String("transaction_id", tx.ID.String()),
		slog.String("external_id", tx.ExternalID))

	respondJSON(w, h.logger, http.StatusCreated, tx)
}

// GetTransaction handles GET /api/v1/transactions/{id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		// Fall back to external-ID lookup for PO/SO numbers
		tx, ferr := h.engine.FindByExternalID(ctx, r.PathValue("id"))
		if ferr != nil {
			respondDomainError(w, h.logger, ferr)
			return
		}
		respondJSON(w, h.logger, http.StatusOK, tx)
		return
	}

	tx, err := h.engine.GetByID(ctx, id)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, tx)
}

// UpdateTransaction handles PUT /api/v1/transactions/{id}
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid transaction ID format")
		return
	}

	var patch ports.UpdateTransactionParams
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.engine.UpdateTransaction(ctx, id, patch)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, tx)
}

// ChangeStatusRequest is the request body for status transitions
type ChangeStatusRequest struct {
	Status            string `json:"status"`
	ApplyStockEffects *bool  `json:"apply_stock_effects,omitempty"`
}

// ChangeStatus handles POST /api/v1/transactions/{id}/status
func (h *TransactionHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid transaction ID format")
		return
	}

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Status == "" {
		respondError(w, h.logger, http.StatusBadRequest, "status is required")
		return
	}

	applyEffects := true
	if req.ApplyStockEffects != nil {
		applyEffects = *req.ApplyStockEffects
	}

	result, err := h.engine.ChangeStatus(ctx, id, domain.TransactionStatus(req.Status), applyEffects)
	if err != nil {
		h.logger.ErrorContext(ctx, "status transition failed",
			slog.String("transaction_id", id.String()),
			slog.String("target_status", req.Status),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "transaction status changed",
		slog.String("transaction_id", id.String()),
		slog.String("status", string(result.Transaction.Status)))

	respondJSON(w, h.logger, http.StatusOK, result)
}

// RecordPaymentRequest is the request body for recording a payment
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Date   *time.Time      `json:"date,omitempty"`
}

// RecordPayment handles POST /api/v1/transactions/{id}/payments
func (h *TransactionHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid transaction ID format")
		return
	}

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	tx, err := h.engine.RecordPayment(ctx, id, req.Amount, req.Method, date)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/v1/transactions/{id}
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid transaction ID format")
		return
	}

	warnings, err := h.engine.DeleteTransaction(ctx, id)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "transaction deleted",
		slog.String("transaction_id", id.String()))

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":  "Transaction deleted successfully",
		"warnings": warnings,
	})
}

// ListByParty handles GET /api/v1/parties/{id}/transactions
func (h *TransactionHandler) ListByParty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	partyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid party ID format")
		return
	}

	result, err := h.engine.FindByParty(ctx, partyID, h.parseListParams(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list transactions",
			slog.String("party_id", partyID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// parseListParams parses query parameters for listing transactions
func (h *TransactionHandler) parseListParams(r *http.Request) ports.TransactionQuery {
	query := ports.TransactionQuery{
		SortBy:    "date",
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

	if kind := q.Get("kind"); kind != "" {
		query.Kind = domain.TransactionKind(kind)
	}

	if status := q.Get("status"); status != "" {
		query.Status = domain.TransactionStatus(status)
	}

	if from := q.Get("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query.DateFrom = t
		}
	}

	if to := q.Get("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query.DateTo = t
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
