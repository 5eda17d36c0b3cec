// internal/core/domain/item.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemKind classifies what an item is used for.
type ItemKind string

const (
	KindMaterial ItemKind = "material"
	KindProduct  ItemKind = "product"
	KindDual     ItemKind = "dual"
)

// Measurement is the dimension an item is counted in.
type Measurement string

const (
	MeasurementQuantity Measurement = "quantity"
	MeasurementWeight   Measurement = "weight"
	MeasurementLength   Measurement = "length"
	MeasurementArea     Measurement = "area"
	MeasurementVolume   Measurement = "volume"
)

// ValuationMethod selects which cost layers are debited on outflow.
type ValuationMethod string

const (
	ValuationFIFO        ValuationMethod = "FIFO"
	ValuationLIFO        ValuationMethod = "LIFO"
	ValuationWeightedAvg ValuationMethod = "WEIGHTED_AVG"
)

// unitsByMeasurement is the closed unit catalogue. An empty unit is
// permitted only for quantity-measured items.
var unitsByMeasurement = map[Measurement][]string{
	MeasurementQuantity: {"ea", "dozen", "case", "pallet", "box"},
	MeasurementWeight:   {"mg", "g", "kg", "oz", "lb", "ton"},
	MeasurementLength:   {"mm", "cm", "m", "in", "ft", "yd"},
	MeasurementArea:     {"sq.mm", "sq.cm", "sq.m", "sq.in", "sq.ft", "acre", "hectare"},
	MeasurementVolume:   {"ml", "l", "gal", "fl.oz", "cu.in", "cu.ft", "cu.m"},
}

// UnitsFor returns the permitted units for a measurement.
func UnitsFor(m Measurement) []string {
	units := unitsByMeasurement[m]
	out := make([]string, len(units))
	copy(out, units)
	return out
}

// ValidUnit reports whether unit belongs to the measurement's unit set.
func ValidUnit(m Measurement, unit string) bool {
	if unit == "" {
		return m == MeasurementQuantity
	}
	for _, u := range unitsByMeasurement[m] {
		if u == unit {
			return true
		}
	}
	return false
}

// Item is a costed stock-keeping unit. The cost-layer ledger is exclusively
// owned by the item and mutated only through the item service.
type Item struct {
	ItemID      uuid.UUID   `json:"item_id"`
	SKU         string      `json:"sku"`
	Name        string      `json:"name"`
	Kind        ItemKind    `json:"kind"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags,omitempty"`
	Measurement Measurement `json:"measurement"`
	Unit        string      `json:"unit,omitempty"`

	OnHand      decimal.Decimal `json:"on_hand"`
	AverageCost decimal.Decimal `json:"average_cost"`
	Valuation   ValuationMethod `json:"valuation"`
	Ledger      StockLedger     `json:"layers"`

	MinimumLevel decimal.Decimal `json:"minimum_level"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	// MaximumLevel zero disables the upper bound.
	MaximumLevel decimal.Decimal `json:"maximum_level"`

	LastUpdated time.Time  `json:"last_updated"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Validate performs domain validation on the item.
func (i *Item) Validate() error {
	if i.SKU == "" {
		return FieldError("sku", "is required")
	}
	if i.Category == "" {
		return FieldError("category", "is required")
	}
	switch i.Kind {
	case KindMaterial, KindProduct, KindDual:
	case "":
		i.Kind = KindProduct
	default:
		return FieldError("kind", "must be material, product or dual")
	}
	switch i.Measurement {
	case MeasurementQuantity, MeasurementWeight, MeasurementLength,
		MeasurementArea, MeasurementVolume:
	case "":
		i.Measurement = MeasurementQuantity
	default:
		return FieldError("measurement", "unknown measurement")
	}
	if !ValidUnit(i.Measurement, i.Unit) {
		return ErrInvalidUnit
	}
	switch i.Valuation {
	case ValuationFIFO, ValuationLIFO, ValuationWeightedAvg:
	case "":
		i.Valuation = ValuationWeightedAvg
	default:
		return FieldError("valuation", "must be FIFO, LIFO or WEIGHTED_AVG")
	}
	if i.OnHand.IsNegative() {
		return FieldError("on_hand", "cannot be negative")
	}
	if err := i.validateThresholds(); err != nil {
		return err
	}
	return nil
}

func (i *Item) validateThresholds() error {
	if i.MinimumLevel.IsNegative() || i.ReorderPoint.IsNegative() || i.MaximumLevel.IsNegative() {
		return FieldError("thresholds", "levels cannot be negative")
	}
	if i.ReorderPoint.LessThan(i.MinimumLevel) {
		return FieldError("reorder_point", "must be at or above minimum level")
	}
	if !i.MaximumLevel.IsZero() && i.MaximumLevel.LessThan(i.ReorderPoint) {
		return FieldError("maximum_level", "must be at or above reorder point")
	}
	return nil
}

// ClampThresholds forces min <= reorder <= max, flooring negatives at zero.
func (i *Item) ClampThresholds() {
	zero := decimal.Zero
	if i.MinimumLevel.IsNegative() {
		i.MinimumLevel = zero
	}
	if i.ReorderPoint.IsNegative() {
		i.ReorderPoint = zero
	}
	if i.MaximumLevel.IsNegative() {
		i.MaximumLevel = zero
	}
	if i.ReorderPoint.LessThan(i.MinimumLevel) {
		i.ReorderPoint = i.MinimumLevel
	}
	if !i.MaximumLevel.IsZero() && i.MaximumLevel.LessThan(i.ReorderPoint) {
		i.MaximumLevel = i.ReorderPoint
	}
}

// NeedsReorder reports whether on-hand stock is at or below the reorder point.
func (i *Item) NeedsReorder() bool {
	return i.OnHand.LessThanOrEqual(i.ReorderPoint)
}

// BelowMinimum reports whether on-hand stock is strictly below the minimum level.
func (i *Item) BelowMinimum() bool {
	return i.OnHand.LessThan(i.MinimumLevel)
}

// PrepareForStorage assigns identity and timestamps before the first write.
func (i *Item) PrepareForStorage() {
	if i.ItemID == uuid.Nil {
		i.ItemID = uuid.New()
	}
	now := time.Now()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	if i.LastUpdated.IsZero() {
		i.LastUpdated = now
	}
	i.UpdatedAt = now
}
