package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolio/stockbook-be/internal/core/domain"
)

func layer(qty, cost float64, when time.Time) domain.CostLayer {
	q := decimal.NewFromFloat(qty)
	return domain.CostLayer{
		Date:            when,
		InitialQuantity: q,
		UnitCost:        decimal.NewFromFloat(cost),
		Remaining:       q,
		Source:          domain.SourcePurchase,
	}
}

func TestStockLedger_Append(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		layer     domain.CostLayer
		wantError error
	}{
		{
			name:  "valid_layer",
			layer: layer(10, 2.5, now),
		},
		{
			name: "zero_quantity",
			layer: domain.CostLayer{
				Date:            now,
				InitialQuantity: decimal.Zero,
				Remaining:       decimal.Zero,
				UnitCost:        decimal.NewFromInt(1),
			},
			wantError: domain.ErrNonPositiveQuantity,
		},
		{
			name: "negative_cost",
			layer: domain.CostLayer{
				Date:            now,
				InitialQuantity: decimal.NewFromInt(5),
				Remaining:       decimal.NewFromInt(5),
				UnitCost:        decimal.NewFromInt(-1),
			},
			wantError: domain.ErrNegativeCost,
		},
		{
			name: "partially_consumed_layer_rejected",
			layer: domain.CostLayer{
				Date:            now,
				InitialQuantity: decimal.NewFromInt(5),
				Remaining:       decimal.NewFromInt(3),
				UnitCost:        decimal.NewFromInt(1),
			},
			wantError: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ledger domain.StockLedger
			err := ledger.Append(tt.layer)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				assert.Empty(t, ledger)
				return
			}
			require.NoError(t, err)
			assert.Len(t, ledger, 1)
		})
	}
}

func TestStockLedger_ConsumeFIFO(t *testing.T) {
	now := time.Now()

	var ledger domain.StockLedger
	require.NoError(t, ledger.Append(layer(10, 2.00, now)))
	require.NoError(t, ledger.Append(layer(5, 3.00, now.Add(time.Hour))))

	cogs, err := ledger.ConsumeFIFO(decimal.NewFromInt(12))
	require.NoError(t, err)

	// 10 @ 2.00 + 2 @ 3.00
	assert.True(t, cogs.Equal(decimal.NewFromInt(26)), "cogs = %s", cogs)
	assert.True(t, ledger[0].Remaining.IsZero())
	assert.True(t, ledger[1].Remaining.Equal(decimal.NewFromInt(3)))
	assert.True(t, ledger.TotalRemaining().Equal(decimal.NewFromInt(3)))
}

func TestStockLedger_ConsumeLIFO(t *testing.T) {
	now := time.Now()

	var ledger domain.StockLedger
	require.NoError(t, ledger.Append(layer(10, 2.00, now)))
	require.NoError(t, ledger.Append(layer(5, 3.00, now.Add(time.Hour))))

	cogs, err := ledger.ConsumeLIFO(decimal.NewFromInt(12))
	require.NoError(t, err)

	// 5 @ 3.00 + 7 @ 2.00
	assert.True(t, cogs.Equal(decimal.NewFromInt(29)), "cogs = %s", cogs)
	assert.True(t, ledger[0].Remaining.Equal(decimal.NewFromInt(3)))
	assert.True(t, ledger[1].Remaining.IsZero())
}

func TestStockLedger_ConsumeInsufficientLeavesLedgerUntouched(t *testing.T) {
	now := time.Now()

	var ledger domain.StockLedger
	require.NoError(t, ledger.Append(layer(3, 2.00, now)))
	before := ledger.Clone()

	_, err := ledger.ConsumeFIFO(decimal.NewFromInt(5))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, before, ledger)

	_, err = ledger.ConsumeLIFO(decimal.NewFromInt(5))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, before, ledger)
}

func TestStockLedger_FIFOAlwaysDebitsOldestFirst(t *testing.T) {
	now := time.Now()

	var ledger domain.StockLedger
	for i := 0; i < 5; i++ {
		require.NoError(t, ledger.Append(layer(4, float64(i+1), now.Add(time.Duration(i)*time.Minute))))
	}

	// Repeated small draws must always hit the oldest non-empty layer.
	for draw := 0; draw < 6; draw++ {
		_, err := ledger.ConsumeFIFO(decimal.NewFromInt(3))
		require.NoError(t, err)

		oldestNonEmpty := -1
		for i := range ledger {
			if !ledger[i].Exhausted() {
				oldestNonEmpty = i
				break
			}
		}
		for i := 0; i < oldestNonEmpty; i++ {
			assert.True(t, ledger[i].Exhausted(),
				"layer %d should be exhausted before layer %d is touched", i, oldestNonEmpty)
		}
	}
}

func TestStockLedger_SameTimestampPreservesInsertionOrder(t *testing.T) {
	now := time.Now()

	var ledger domain.StockLedger
	require.NoError(t, ledger.Append(layer(5, 1.00, now)))
	require.NoError(t, ledger.Append(layer(5, 9.00, now)))

	cogs, err := ledger.ConsumeFIFO(decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, cogs.Equal(decimal.NewFromInt(5)), "first inserted layer must be debited first")
}

func TestStockLedger_WeightedAverageIgnoresExhaustedLayers(t *testing.T) {
	now := time.Now()

	var ledger domain.StockLedger
	require.NoError(t, ledger.Append(layer(10, 2.00, now)))
	require.NoError(t, ledger.Append(layer(5, 3.00, now)))

	avg := ledger.WeightedAverage()
	want := decimal.NewFromInt(35).Div(decimal.NewFromInt(15))
	assert.True(t, avg.Equal(want), "avg = %s want %s", avg, want)

	_, err := ledger.ConsumeFIFO(decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, ledger.WeightedAverage().Equal(decimal.NewFromInt(3)))
}

func TestStockLedger_ExhaustedLayersAreRetained(t *testing.T) {
	now := time.Now()

	var ledger domain.StockLedger
	require.NoError(t, ledger.Append(layer(10, 2.00, now)))
	_, err := ledger.ConsumeFIFO(decimal.NewFromInt(10))
	require.NoError(t, err)

	assert.Len(t, ledger, 1, "exhausted layers stay for reporting")
	assert.True(t, ledger.TotalRemaining().IsZero())
	assert.True(t, ledger.WeightedAverage().IsZero())
}
