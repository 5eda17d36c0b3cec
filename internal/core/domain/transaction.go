// internal/core/domain/transaction.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind discriminates purchases from sales. Both share one record
// shape and one status machine; only the sign of stock effects differs.
type TransactionKind string

const (
	KindPurchase TransactionKind = "PURCHASE"
	KindSale     TransactionKind = "SALE"
)

// TransactionStatus is the lifecycle state of a purchase or sale.
type TransactionStatus string

const (
	StatusDraft     TransactionStatus = "DRAFT"
	StatusPending   TransactionStatus = "PENDING"
	StatusConfirmed TransactionStatus = "CONFIRMED"
	StatusPartial   TransactionStatus = "PARTIAL"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusCancelled TransactionStatus = "CANCELLED"
	StatusReturned  TransactionStatus = "RETURNED"
)

// PaymentStatus tracks settlement independent of the lifecycle status.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentVoided   PaymentStatus = "VOIDED"
)

// transitions is the legal status machine. PARTIAL is not listed: it is a
// sub-state of CONFIRMED entered when receipt/fulfilment is incomplete and
// follows CONFIRMED's row.
var transitions = map[TransactionStatus][]TransactionStatus{
	StatusDraft:     {StatusPending, StatusConfirmed, StatusCancelled},
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusReturned},
	StatusCompleted: {StatusReturned},
	StatusCancelled: {},
	StatusReturned:  {},
}

// CanTransition reports whether the status machine allows from -> to.
// Self-transitions are never allowed. A PARTIAL transaction may also be
// re-confirmed to apply newly received or fulfilled deltas.
func CanTransition(from, to TransactionStatus) bool {
	if from == to {
		return false
	}
	effective := from
	if from == StatusPartial {
		if to == StatusConfirmed {
			return true
		}
		effective = StatusConfirmed
	}
	for _, next := range transitions[effective] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusReturned
}

// LineItem is one transaction line. AppliedQty tracks how much of the line
// has actually moved stock so repeated partial confirmations never
// double-count; COGS accumulates the cost charged for sale outflows and is
// the basis for reversal pricing.
type LineItem struct {
	ItemID              uuid.UUID       `json:"item_id"`
	SKU                 string          `json:"sku,omitempty"`
	Name                string          `json:"name,omitempty"`
	Quantity            decimal.Decimal `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	DiscountPct         decimal.Decimal `json:"discount_pct"`
	ReceivedOrFulfilled decimal.Decimal `json:"received_or_fulfilled"`
	AppliedQty          decimal.Decimal `json:"applied_qty"`
	COGS                decimal.Decimal `json:"cogs"`
}

var hundred = decimal.NewFromInt(100)

// LineTotal is quantity * unitPrice * (1 - discount/100).
func (l LineItem) LineTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).Mul(hundred.Sub(l.DiscountPct)).Div(hundred)
}

// EffectiveUnitCost is the discounted unit price, the cost at which a
// purchase line enters the ledger.
func (l LineItem) EffectiveUnitCost() decimal.Decimal {
	return l.UnitPrice.Mul(hundred.Sub(l.DiscountPct)).Div(hundred)
}

// TargetQty is the quantity a confirmation should have applied so far:
// the tracked receipt/fulfilment when partial tracking is in use, the full
// ordered quantity otherwise.
func (l LineItem) TargetQty() decimal.Decimal {
	if l.ReceivedOrFulfilled.IsPositive() {
		return l.ReceivedOrFulfilled
	}
	return l.Quantity
}

// Validate checks the line-level invariants.
func (l LineItem) Validate() error {
	if l.ItemID == uuid.Nil {
		return FieldError("item_id", "is required")
	}
	if !l.Quantity.IsPositive() {
		return FieldError("quantity", "must be positive")
	}
	if l.UnitPrice.IsNegative() {
		return FieldError("unit_price", "cannot be negative")
	}
	if l.DiscountPct.IsNegative() || l.DiscountPct.GreaterThan(hundred) {
		return FieldError("discount_pct", "must be between 0 and 100")
	}
	if l.ReceivedOrFulfilled.IsNegative() || l.ReceivedOrFulfilled.GreaterThan(l.Quantity) {
		return FieldError("received_or_fulfilled", "must be between 0 and quantity")
	}
	return nil
}

// Payment is one settlement against a transaction.
type Payment struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Date   time.Time       `json:"date"`
}

// Transaction is a purchase or sale with its lines and payments.
type Transaction struct {
	ID             uuid.UUID         `json:"id"`
	ExternalID     string            `json:"external_id"`
	Kind           TransactionKind   `json:"kind"`
	CounterpartyID uuid.UUID         `json:"counterparty_id"`
	Date           time.Time         `json:"date"`
	Status         TransactionStatus `json:"status"`
	PaymentStatus  PaymentStatus     `json:"payment_status"`

	Lines    []LineItem `json:"lines"`
	Payments []Payment  `json:"payments,omitempty"`

	Subtotal    decimal.Decimal `json:"subtotal"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxRatePct  decimal.Decimal `json:"tax_rate_pct"`
	Shipping    decimal.Decimal `json:"shipping"`
	Total       decimal.Decimal `json:"total"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the transaction and all of its lines.
func (t *Transaction) Validate() error {
	switch t.Kind {
	case KindPurchase, KindSale:
	default:
		return FieldError("kind", "must be PURCHASE or SALE")
	}
	if t.CounterpartyID == uuid.Nil {
		return FieldError("counterparty_id", "is required")
	}
	if len(t.Lines) == 0 {
		return FieldError("lines", "at least one line is required")
	}
	for _, l := range t.Lines {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	if t.DiscountPct.IsNegative() || t.DiscountPct.GreaterThan(hundred) {
		return FieldError("discount_pct", "must be between 0 and 100")
	}
	if t.TaxRatePct.IsNegative() {
		return FieldError("tax_rate_pct", "cannot be negative")
	}
	if t.Shipping.IsNegative() {
		return FieldError("shipping", "cannot be negative")
	}
	return nil
}

// Recalculate rebuilds subtotal and total from the lines.
func (t *Transaction) Recalculate() {
	subtotal := decimal.Zero
	for _, l := range t.Lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	t.Subtotal = subtotal
	discounted := subtotal.Mul(hundred.Sub(t.DiscountPct)).Div(hundred)
	taxed := discounted.Mul(hundred.Add(t.TaxRatePct)).Div(hundred)
	t.Total = taxed.Add(t.Shipping)
}

// RecordPayment appends a payment and recomputes the payment status.
func (t *Transaction) RecordPayment(amount decimal.Decimal, method string, date time.Time) error {
	if !amount.IsPositive() {
		return FieldError("amount", "must be positive")
	}
	t.Payments = append(t.Payments, Payment{Amount: amount, Method: method, Date: date})
	t.AmountPaid = t.AmountPaid.Add(amount)
	t.RefreshPaymentStatus()
	return nil
}

// RefreshPaymentStatus applies the settlement rule: UNPAID at zero, PAID at
// or above total, PARTIAL in between. Terminal refund/void states are set
// by the transition logic and never overwritten here.
func (t *Transaction) RefreshPaymentStatus() {
	if t.PaymentStatus == PaymentRefunded || t.PaymentStatus == PaymentVoided {
		return
	}
	switch {
	case t.AmountPaid.IsZero():
		t.PaymentStatus = PaymentUnpaid
	case t.AmountPaid.GreaterThanOrEqual(t.Total):
		t.PaymentStatus = PaymentPaid
	default:
		t.PaymentStatus = PaymentPartial
	}
}

// FullyApplied reports whether every line has moved its full ordered
// quantity through stock.
func (t *Transaction) FullyApplied() bool {
	for _, l := range t.Lines {
		if l.AppliedQty.LessThan(l.Quantity) {
			return false
		}
	}
	return true
}

// HasStockEffects reports whether the transaction has ever moved stock.
func (t *Transaction) HasStockEffects() bool {
	for _, l := range t.Lines {
		if l.AppliedQty.IsPositive() {
			return true
		}
	}
	return false
}

// PrepareForStorage assigns identity and timestamps before the first write.
func (t *Transaction) PrepareForStorage() {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.Date.IsZero() {
		t.Date = now
	}
	if t.Status == "" {
		t.Status = StatusDraft
	}
	if t.PaymentStatus == "" {
		t.PaymentStatus = PaymentUnpaid
	}
	t.UpdatedAt = now
}
