package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolio/stockbook-be/internal/core/domain"
)

func TestItem_Validate(t *testing.T) {
	valid := func(mutate ...func(*domain.Item)) *domain.Item {
		item := &domain.Item{
			SKU:         "WIDGET-01",
			Name:        "Widget",
			Kind:        domain.KindProduct,
			Category:    "hardware",
			Measurement: domain.MeasurementWeight,
			Unit:        "kg",
			Valuation:   domain.ValuationFIFO,
		}
		for _, m := range mutate {
			m(item)
		}
		return item
	}

	tests := []struct {
		name      string
		item      *domain.Item
		wantError error
	}{
		{
			name: "valid_item",
			item: valid(),
		},
		{
			name:      "missing_sku",
			item:      valid(func(i *domain.Item) { i.SKU = "" }),
			wantError: domain.ErrValidation,
		},
		{
			name:      "missing_category",
			item:      valid(func(i *domain.Item) { i.Category = "" }),
			wantError: domain.ErrValidation,
		},
		{
			name:      "unit_outside_measurement_set",
			item:      valid(func(i *domain.Item) { i.Unit = "ea" }),
			wantError: domain.ErrInvalidUnit,
		},
		{
			name: "empty_unit_only_for_quantity",
			item: valid(func(i *domain.Item) { i.Unit = "" }),
			// weight items must carry a unit
			wantError: domain.ErrInvalidUnit,
		},
		{
			name: "empty_unit_ok_for_quantity",
			item: valid(func(i *domain.Item) {
				i.Measurement = domain.MeasurementQuantity
				i.Unit = ""
			}),
		},
		{
			name: "reorder_below_minimum",
			item: valid(func(i *domain.Item) {
				i.MinimumLevel = decimal.NewFromInt(10)
				i.ReorderPoint = decimal.NewFromInt(5)
			}),
			wantError: domain.ErrValidation,
		},
		{
			name: "maximum_below_reorder",
			item: valid(func(i *domain.Item) {
				i.ReorderPoint = decimal.NewFromInt(10)
				i.MaximumLevel = decimal.NewFromInt(5)
			}),
			wantError: domain.ErrValidation,
		},
		{
			name: "zero_maximum_disables_upper_bound",
			item: valid(func(i *domain.Item) {
				i.ReorderPoint = decimal.NewFromInt(10)
				i.MaximumLevel = decimal.Zero
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestItem_ValidateDefaults(t *testing.T) {
	item := &domain.Item{SKU: "X", Category: "misc"}
	require.NoError(t, item.Validate())

	assert.Equal(t, domain.KindProduct, item.Kind)
	assert.Equal(t, domain.MeasurementQuantity, item.Measurement)
	assert.Equal(t, domain.ValuationWeightedAvg, item.Valuation)
}

func TestValidUnit(t *testing.T) {
	tests := []struct {
		measurement domain.Measurement
		unit        string
		want        bool
	}{
		{domain.MeasurementQuantity, "ea", true},
		{domain.MeasurementQuantity, "", true},
		{domain.MeasurementQuantity, "kg", false},
		{domain.MeasurementWeight, "kg", true},
		{domain.MeasurementWeight, "", false},
		{domain.MeasurementLength, "yd", true},
		{domain.MeasurementArea, "hectare", true},
		{domain.MeasurementArea, "sqm", false},
		{domain.MeasurementVolume, "fl.oz", true},
		{domain.MeasurementVolume, "cup", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.ValidUnit(tt.measurement, tt.unit),
			"%s / %q", tt.measurement, tt.unit)
	}
}

func TestItem_ClampThresholds(t *testing.T) {
	item := &domain.Item{
		MinimumLevel: decimal.NewFromInt(10),
		ReorderPoint: decimal.NewFromInt(4),
		MaximumLevel: decimal.NewFromInt(2),
	}
	item.ClampThresholds()

	assert.True(t, item.ReorderPoint.Equal(decimal.NewFromInt(10)), "reorder lifted to minimum")
	assert.True(t, item.MaximumLevel.Equal(decimal.NewFromInt(10)), "maximum lifted to reorder")

	item = &domain.Item{ReorderPoint: decimal.NewFromInt(-3)}
	item.ClampThresholds()
	assert.True(t, item.ReorderPoint.IsZero())
}

func TestItem_ReorderFlags(t *testing.T) {
	item := &domain.Item{
		OnHand:       decimal.NewFromInt(5),
		MinimumLevel: decimal.NewFromInt(3),
		ReorderPoint: decimal.NewFromInt(5),
	}

	assert.True(t, item.NeedsReorder(), "at the reorder point counts")
	assert.False(t, item.BelowMinimum())

	item.OnHand = decimal.NewFromInt(2)
	assert.True(t, item.NeedsReorder())
	assert.True(t, item.BelowMinimum())

	item.OnHand = decimal.NewFromInt(3)
	assert.False(t, item.BelowMinimum(), "minimum is a strict bound")
}
