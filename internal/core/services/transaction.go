// internal/core/services/transaction.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolio/stockbook-be/internal/core/domain"
	"github.com/avolio/stockbook-be/internal/core/ports"
)

// TransactionEngine drives purchase and sale lifecycles. Every status change
// that moves stock runs inside one unit of work: the transaction record, its
// lines and every touched item commit or roll back together.
type TransactionEngine struct {
	txRepo ports.TransactionRepository
	items  ports.ItemService
	seq    ports.SequenceRepository
	txm    ports.TxManager
	logger *slog.Logger
}

var _ ports.TransactionEngine = (*TransactionEngine)(nil)

// NewTransactionEngine creates a new transaction engine.
func NewTransactionEngine(txRepo ports.TransactionRepository, items ports.ItemService,
	seq ports.SequenceRepository, txm ports.TxManager, logger *slog.Logger) *TransactionEngine {
	return &TransactionEngine{
		txRepo: txRepo,
		items:  items,
		seq:    seq,
		txm:    txm,
		logger: logger.With(slog.String("service", "transaction")),
	}
}

// externalIDPrefix maps a transaction kind to its external ID prefix.
func externalIDPrefix(kind domain.TransactionKind) string {
	if kind == domain.KindPurchase {
		return "PO"
	}
	return "SO"
}

// CreateTransaction validates and persists a new DRAFT transaction, assigning
// an external ID of the form {PO|SO}{YYMMDD}{NNNN} from the per-day sequence.
func (e *TransactionEngine) CreateTransaction(ctx context.Context, kind domain.TransactionKind,
	params ports.CreateTransactionParams) (*domain.Transaction, error) {

	tx := &domain.Transaction{
		Kind:           kind,
		CounterpartyID: params.CounterpartyID,
		Date:           params.Date,
		Lines:          params.Lines,
		DiscountPct:    params.DiscountPct,
		TaxRatePct:     params.TaxRatePct,
		Shipping:       params.Shipping,
		Notes:          params.Notes,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	tx.Recalculate()
	tx.PrepareForStorage()

	err := e.txm.RunInTx(ctx, func(ctx context.Context) error {
		prefix := externalIDPrefix(kind)
		dateKey := tx.Date.Format("060102")
		n, err := e.seq.Next(ctx, prefix, dateKey)
		if err != nil {
			return fmt.Errorf("failed to allocate external id: %w", err)
		}
		tx.ExternalID = fmt.Sprintf("%s%s%04d", prefix, dateKey, n)

		if err := e.txRepo.Create(ctx, tx); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "transaction created",
		slog.String("transaction_id", tx.ID.String()),
		slog.String("external_id", tx.ExternalID),
		slog.String("kind", string(kind)))
	return tx, nil
}

// UpdateTransaction patches a transaction that has not yet moved stock.
// Only DRAFT and PENDING transactions are editable.
func (e *TransactionEngine) UpdateTransaction(ctx context.Context, id uuid.UUID,
	patch ports.UpdateTransactionParams) (*domain.Transaction, error) {

	var updated *domain.Transaction
	err := e.txm.RunInTx(ctx, func(ctx context.Context) error {
		tx, err := e.lockTransaction(ctx, id)
		if err != nil {
			return err
		}
		if tx.Status != domain.StatusDraft && tx.Status != domain.StatusPending {
			return fmt.Errorf("transaction %s is %s and can no longer be edited: %w",
				tx.ExternalID, tx.Status, domain.ErrConflict)
		}

		if patch.CounterpartyID != nil {
			tx.CounterpartyID = *patch.CounterpartyID
		}
		if patch.Date != nil {
			tx.Date = *patch.Date
		}
		if patch.Lines != nil {
			tx.Lines = patch.Lines
		}
		if patch.DiscountPct != nil {
			tx.DiscountPct = *patch.DiscountPct
		}
		if patch.TaxRatePct != nil {
			tx.TaxRatePct = *patch.TaxRatePct
		}
		if patch.Shipping != nil {
			tx.Shipping = *patch.Shipping
		}
		if patch.Notes != nil {
			tx.Notes = *patch.Notes
		}

		if err := tx.Validate(); err != nil {
			return err
		}
		tx.Recalculate()
		tx.RefreshPaymentStatus()
		tx.UpdatedAt = time.Now()

		if err := e.txRepo.Update(ctx, tx); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		updated = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ChangeStatus moves a transaction through its lifecycle, applying or
// reversing stock effects as the transition demands. The record, its lines
// and every touched item commit atomically; the first failure rolls back
// everything. applyStockEffects=false moves the status only, for
// administrative corrections.
func (e *TransactionEngine) ChangeStatus(ctx context.Context, id uuid.UUID,
	newStatus domain.TransactionStatus, applyStockEffects bool) (*ports.TransitionResult, error) {

	var result *ports.TransitionResult
	err := e.txm.RunInTx(ctx, func(ctx context.Context) error {
		tx, err := e.lockTransaction(ctx, id)
		if err != nil {
			return err
		}
		from := tx.Status
		if !domain.CanTransition(from, newStatus) {
			return fmt.Errorf("%s -> %s: %w", from, newStatus, domain.ErrIllegalTransition)
		}

		var warnings []domain.Warning
		if applyStockEffects {
			switch {
			case newStatus == domain.StatusConfirmed:
				applied, err := e.applyConfirm(ctx, tx)
				if err != nil {
					return err
				}
				if from == domain.StatusPartial && !applied {
					return fmt.Errorf("transaction %s has no new quantities to apply: %w",
						tx.ExternalID, domain.ErrConflict)
				}
			case isReversal(from, newStatus):
				warnings, err = e.reverseEffects(ctx, tx)
				if err != nil {
					return err
				}
			}
		}

		tx.Status = newStatus
		if newStatus == domain.StatusConfirmed && !tx.FullyApplied() {
			tx.Status = domain.StatusPartial
		}
		switch newStatus {
		case domain.StatusCancelled:
			tx.PaymentStatus = domain.PaymentVoided
		case domain.StatusReturned:
			if tx.AmountPaid.IsPositive() {
				tx.PaymentStatus = domain.PaymentRefunded
			}
		}
		tx.UpdatedAt = time.Now()

		if err := e.txRepo.Update(ctx, tx); err != nil {
			return fmt.Errorf("failed to persist transition: %w", err)
		}
		result = &ports.TransitionResult{Transaction: tx, Warnings: warnings}

		e.logger.InfoContext(ctx, "transaction transitioned",
			slog.String("transaction_id", tx.ID.String()),
			slog.String("external_id", tx.ExternalID),
			slog.String("from", string(from)),
			slog.String("to", string(tx.Status)),
			slog.Int("warnings", len(warnings)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// isReversal reports whether (from, to) undoes previously applied stock.
func isReversal(from, to domain.TransactionStatus) bool {
	switch from {
	case domain.StatusConfirmed, domain.StatusPartial, domain.StatusCompleted:
		return to == domain.StatusCancelled || to == domain.StatusReturned
	}
	return false
}

// lineOrder returns line indexes sorted by ascending item ID, the global
// lock order for multi-item transactions.
func lineOrder(lines []domain.LineItem) []int {
	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ida, idb := lines[order[a]].ItemID, lines[order[b]].ItemID
		return bytes.Compare(ida[:], idb[:]) < 0
	})
	return order
}

// applyConfirm applies each line's outstanding delta: target quantity minus
// what earlier confirmations already moved. Purchases add a cost layer at the
// discounted unit price; sales consume stock and accumulate COGS on the line.
// Reports whether any stock moved.
func (e *TransactionEngine) applyConfirm(ctx context.Context, tx *domain.Transaction) (bool, error) {
	applied := false
	for _, i := range lineOrder(tx.Lines) {
		line := &tx.Lines[i]
		delta := line.TargetQty().Sub(line.AppliedQty)
		if !delta.IsPositive() {
			continue
		}

		switch tx.Kind {
		case domain.KindPurchase:
			_, err := e.items.AddInventory(ctx, line.ItemID, delta,
				line.EffectiveUnitCost(), domain.SourcePurchase, tx.Date)
			if err != nil {
				return false, fmt.Errorf("line %s: %w", line.ItemID, err)
			}
		case domain.KindSale:
			mv, err := e.items.RemoveInventory(ctx, line.ItemID, delta, tx.Date)
			if err != nil {
				return false, fmt.Errorf("line %s: %w", line.ItemID, err)
			}
			line.COGS = line.COGS.Add(mv.COGS)
		}
		line.AppliedQty = line.AppliedQty.Add(delta)
		applied = true
	}
	return applied, nil
}

// reverseEffects undoes every applied quantity. Sale reversals restore stock
// at the cost originally charged; purchase reversals retract layers and may
// surface a warning when the received stock has since been consumed. Applied
// quantities reset to zero; line COGS is kept as the audit trail.
func (e *TransactionEngine) reverseEffects(ctx context.Context, tx *domain.Transaction) ([]domain.Warning, error) {
	var warnings []domain.Warning
	for _, i := range lineOrder(tx.Lines) {
		line := &tx.Lines[i]
		if !line.AppliedQty.IsPositive() {
			continue
		}

		switch tx.Kind {
		case domain.KindPurchase:
			mv, err := e.items.RetractInventory(ctx, line.ItemID, line.AppliedQty, tx.Date)
			if err != nil {
				return nil, fmt.Errorf("line %s: %w", line.ItemID, err)
			}
			warnings = append(warnings, mv.Warnings...)
		case domain.KindSale:
			_, err := e.items.ReverseInventory(ctx, line.ItemID, line.AppliedQty, line.COGS, tx.Date)
			if err != nil {
				return nil, fmt.Errorf("line %s: %w", line.ItemID, err)
			}
		}
		line.AppliedQty = decimal.Zero
	}
	return warnings, nil
}

// RecordPayment appends a settlement and recomputes the payment status.
func (e *TransactionEngine) RecordPayment(ctx context.Context, id uuid.UUID,
	amount decimal.Decimal, method string, date time.Time) (*domain.Transaction, error) {

	var updated *domain.Transaction
	err := e.txm.RunInTx(ctx, func(ctx context.Context) error {
		tx, err := e.lockTransaction(ctx, id)
		if err != nil {
			return err
		}
		if tx.Status.IsTerminal() {
			return fmt.Errorf("transaction %s is %s: %w", tx.ExternalID, tx.Status, domain.ErrConflict)
		}
		if err := tx.RecordPayment(amount, method, date); err != nil {
			return err
		}
		tx.UpdatedAt = time.Now()
		if err := e.txRepo.Update(ctx, tx); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		updated = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "payment recorded",
		slog.String("transaction_id", id.String()),
		slog.String("amount", amount.String()),
		slog.String("payment_status", string(updated.PaymentStatus)))
	return updated, nil
}

// DeleteTransaction removes a transaction. One that has moved stock is
// reversed first, record and items in the same unit of work; a delete whose
// reversal transition is illegal is rejected.
func (e *TransactionEngine) DeleteTransaction(ctx context.Context, id uuid.UUID) ([]domain.Warning, error) {
	var warnings []domain.Warning
	err := e.txm.RunInTx(ctx, func(ctx context.Context) error {
		tx, err := e.lockTransaction(ctx, id)
		if err != nil {
			return err
		}

		reversed := tx.HasStockEffects()
		if reversed {
			// Any legal undo transition qualifies: CANCELLED for transactions
			// still in flight, RETURNED for completed ones.
			if !domain.CanTransition(tx.Status, domain.StatusCancelled) &&
				!domain.CanTransition(tx.Status, domain.StatusReturned) {
				return fmt.Errorf("cannot delete %s transaction %s without a legal reversal: %w",
					tx.Status, tx.ExternalID, domain.ErrIllegalTransition)
			}
			warnings, err = e.reverseEffects(ctx, tx)
			if err != nil {
				return err
			}
		}

		if err := e.txRepo.Delete(ctx, tx.ID); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}

		e.logger.InfoContext(ctx, "transaction deleted",
			slog.String("transaction_id", tx.ID.String()),
			slog.String("external_id", tx.ExternalID),
			slog.Bool("reversed", reversed))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return warnings, nil
}

// GetByID retrieves a transaction by ID.
func (e *TransactionEngine) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	tx, err := e.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}
	return tx, nil
}

// FindByExternalID retrieves a transaction by its human-readable ID.
func (e *TransactionEngine) FindByExternalID(ctx context.Context, externalID string) (*domain.Transaction, error) {
	tx, err := e.txRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction by external id: %w", err)
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s: %w", externalID, domain.ErrNotFound)
	}
	return tx, nil
}

// FindByParty lists a counterparty's transactions.
func (e *TransactionEngine) FindByParty(ctx context.Context, partyID uuid.UUID,
	query ports.TransactionQuery) (*ports.TransactionListResult, error) {

	txs, total, err := e.txRepo.FindByParty(ctx, partyID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &ports.TransactionListResult{
		Transactions: txs,
		TotalCount:   total,
		Limit:        query.Limit,
		Offset:       query.Offset,
	}, nil
}

// lockTransaction reads a transaction under its row lock inside the current
// unit of work.
func (e *TransactionEngine) lockTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	tx, err := e.txRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}
	return tx, nil
}
