// internal/core/domain/ledger.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LayerSource records the provenance of an inbound cost layer.
type LayerSource string

const (
	SourcePurchase   LayerSource = "purchase"
	SourceAdjustment LayerSource = "adjustment"
	SourceManual     LayerSource = "manual"
	SourceReturn     LayerSource = "return"
)

// CostLayer is a single inbound stock record. Once Remaining reaches zero
// the layer is retained for reporting but excluded from costing.
type CostLayer struct {
	Date            time.Time       `json:"date"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Remaining       decimal.Decimal `json:"remaining"`
	Source          LayerSource     `json:"source"`
}

// Exhausted reports whether the layer has no remaining quantity.
func (l CostLayer) Exhausted() bool {
	return !l.Remaining.IsPositive()
}

// StockLedger is the append-only sequence of cost layers for one item.
// Slice order is insertion order; layers sharing a timestamp keep it.
// The ledger is never compacted.
type StockLedger []CostLayer

// Append adds a fresh layer. The layer must carry its full initial
// quantity: remaining == initial > 0 and a non-negative unit cost.
func (s *StockLedger) Append(layer CostLayer) error {
	if !layer.InitialQuantity.IsPositive() {
		return ErrNonPositiveQuantity
	}
	if layer.UnitCost.IsNegative() {
		return ErrNegativeCost
	}
	if !layer.Remaining.Equal(layer.InitialQuantity) {
		return FieldError("remaining", "new layer must be unconsumed")
	}
	*s = append(*s, layer)
	return nil
}

// TotalRemaining sums the remaining quantity across all layers.
func (s StockLedger) TotalRemaining() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s {
		total = total.Add(l.Remaining)
	}
	return total
}

// WeightedAverage returns the quantity-weighted mean unit cost of the
// non-exhausted layers, or zero for an empty ledger.
func (s StockLedger) WeightedAverage() decimal.Decimal {
	qty := decimal.Zero
	value := decimal.Zero
	for _, l := range s {
		if l.Exhausted() {
			continue
		}
		qty = qty.Add(l.Remaining)
		value = value.Add(l.Remaining.Mul(l.UnitCost))
	}
	if !qty.IsPositive() {
		return decimal.Zero
	}
	return value.Div(qty)
}

// ConsumeFIFO debits qty from the earliest non-exhausted layers and returns
// the cost of goods consumed. The ledger is left untouched when total
// remaining stock is short of qty.
func (s *StockLedger) ConsumeFIFO(qty decimal.Decimal) (decimal.Decimal, error) {
	return s.consume(qty, false)
}

// ConsumeLIFO is the latest-first counterpart of ConsumeFIFO.
func (s *StockLedger) ConsumeLIFO(qty decimal.Decimal) (decimal.Decimal, error) {
	return s.consume(qty, true)
}

func (s *StockLedger) consume(qty decimal.Decimal, newestFirst bool) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Zero, ErrNonPositiveQuantity
	}
	if s.TotalRemaining().LessThan(qty) {
		return decimal.Zero, ErrInsufficientStock
	}

	layers := *s
	cogs := decimal.Zero
	left := qty
	for n := 0; n < len(layers) && left.IsPositive(); n++ {
		i := n
		if newestFirst {
			i = len(layers) - 1 - n
		}
		if layers[i].Exhausted() {
			continue
		}
		take := decimal.Min(layers[i].Remaining, left)
		layers[i].Remaining = layers[i].Remaining.Sub(take)
		cogs = cogs.Add(take.Mul(layers[i].UnitCost))
		left = left.Sub(take)
	}
	return cogs, nil
}

// Clone returns an independent copy of the ledger.
func (s StockLedger) Clone() StockLedger {
	if s == nil {
		return nil
	}
	out := make(StockLedger, len(s))
	copy(out, s)
	return out
}
