// internal/core/domain/costing.go
package domain

// The costing engine: pure mutations of an item's ledger and aggregates.
// No rounding is applied here; callers round for display only.

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AddInflow appends a new cost layer and recomputes on-hand stock and the
// running average cost.
func (i *Item) AddInflow(qty, unitCost decimal.Decimal, date time.Time, source LayerSource) error {
	if !qty.IsPositive() {
		return ErrNonPositiveQuantity
	}
	if unitCost.IsNegative() {
		return ErrNegativeCost
	}
	if err := i.Ledger.Append(CostLayer{
		Date:            date,
		InitialQuantity: qty,
		UnitCost:        unitCost,
		Remaining:       qty,
		Source:          source,
	}); err != nil {
		return err
	}

	if i.OnHand.IsPositive() {
		total := i.OnHand.Add(qty)
		i.AverageCost = i.OnHand.Mul(i.AverageCost).Add(qty.Mul(unitCost)).Div(total)
		i.OnHand = total
	} else {
		i.AverageCost = unitCost
		i.OnHand = qty
	}
	i.LastUpdated = date
	return nil
}

// Consume debits qty according to the item's valuation method and returns
// the cost of goods for the outflow. Under WEIGHTED_AVG the charge is
// qty * averageCost and the oldest layers are debited for bookkeeping so
// that on-hand stock always equals the layer sum.
func (i *Item) Consume(qty decimal.Decimal, date time.Time) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Zero, ErrNonPositiveQuantity
	}
	if i.OnHand.LessThan(qty) {
		return decimal.Zero, ErrInsufficientStock
	}

	var cogs decimal.Decimal
	var err error
	switch i.Valuation {
	case ValuationFIFO:
		cogs, err = i.Ledger.ConsumeFIFO(qty)
	case ValuationLIFO:
		cogs, err = i.Ledger.ConsumeLIFO(qty)
	case ValuationWeightedAvg:
		cogs = qty.Mul(i.AverageCost)
		_, err = i.Ledger.ConsumeFIFO(qty)
	default:
		return decimal.Zero, FieldError("valuation", "unknown valuation method")
	}
	if err != nil {
		return decimal.Zero, err
	}

	i.OnHand = i.OnHand.Sub(qty)
	i.refreshAverage()
	i.LastUpdated = date
	return cogs, nil
}

// Reverse restores qty previously consumed by an outflow. A restorative
// layer is appended at unitCost = previousCOGS / qty so the returned stock
// re-enters the ledger at the cost it left with.
func (i *Item) Reverse(qty, previousCOGS decimal.Decimal, date time.Time) error {
	if !qty.IsPositive() {
		return ErrNonPositiveQuantity
	}
	unitCost := previousCOGS.Div(qty)
	if unitCost.IsNegative() {
		return ErrNegativeCost
	}
	return i.AddInflow(qty, unitCost, date, SourceReturn)
}

// Retract undoes a prior inflow, debiting up to qty from the newest layers.
// When the inflow has since been partially consumed the retraction clamps
// at zero on-hand and reports STOCK_ALREADY_CONSUMED as a warning.
func (i *Item) Retract(qty decimal.Decimal, date time.Time) (*Warning, error) {
	if !qty.IsPositive() {
		return nil, ErrNonPositiveQuantity
	}

	var warning *Warning
	take := qty
	if i.OnHand.LessThan(qty) {
		take = i.OnHand
		warning = &Warning{
			Code: WarnStockAlreadyConsumed,
			Message: fmt.Sprintf(
				"only %s of %s could be retracted; the rest was already consumed",
				take.String(), qty.String()),
		}
	}
	if take.IsPositive() {
		if _, err := i.Ledger.ConsumeLIFO(take); err != nil {
			return nil, err
		}
		i.OnHand = i.OnHand.Sub(take)
	}
	i.refreshAverage()
	i.LastUpdated = date
	return warning, nil
}

// refreshAverage re-derives the average cost from the surviving layers so
// the invariant onHand * averageCost == sum(remaining * unitCost) holds
// after every mutation.
func (i *Item) refreshAverage() {
	if i.OnHand.IsPositive() {
		i.AverageCost = i.Ledger.WeightedAverage()
	}
}
