// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the error kinds surfaced at component boundaries.
// Callers discriminate with errors.Is; repositories and services wrap
// these with fmt.Errorf("...: %w", err) to add context.
var (
	// ErrValidation is the base error for field-level input validation.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidUnit indicates a unit outside the set permitted for the
	// item's measurement.
	ErrInvalidUnit = errors.New("invalid unit for measurement")
	// ErrDuplicateSKU indicates a SKU uniqueness violation at commit.
	ErrDuplicateSKU = errors.New("duplicate sku")
	// ErrDuplicateExternalID indicates an external transaction ID collision.
	ErrDuplicateExternalID = errors.New("duplicate external id")
	// ErrInsufficientStock indicates an outflow larger than on-hand stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrNonPositiveQuantity indicates a zero or negative inflow quantity.
	ErrNonPositiveQuantity = errors.New("quantity must be positive")
	// ErrNegativeCost indicates a negative unit cost on an inflow.
	ErrNegativeCost = errors.New("unit cost cannot be negative")
	// ErrIllegalTransition indicates a status change the state machine forbids.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrNotFound indicates an absent record.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates store-level write contention; the unit of work
	// retries these before surfacing them.
	ErrConflict = errors.New("write conflict")
)

// FieldError wraps ErrValidation with the offending field name.
func FieldError(field, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, msg)
}

// Warning codes returned alongside success results.
const (
	WarnStockAlreadyConsumed      = "STOCK_ALREADY_CONSUMED"
	WarnValuationSwitchMixedStock = "VALUATION_SWITCH_MIXED_LEDGER"
)

// Warning is a non-fatal condition reported next to a successful result so
// callers can log or display it without branching on failure.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}
