package domain_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolio/stockbook-be/internal/core/domain"
)

func newItem(valuation domain.ValuationMethod) *domain.Item {
	item := &domain.Item{
		SKU:         "0000000001",
		Name:        "Widget",
		Category:    "hardware",
		Measurement: domain.MeasurementQuantity,
		Unit:        "ea",
		Valuation:   valuation,
	}
	item.PrepareForStorage()
	return item
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestItem_AddInflow(t *testing.T) {
	now := time.Now()

	t.Run("first_inflow_sets_average_to_unit_cost", func(t *testing.T) {
		item := newItem(domain.ValuationFIFO)
		require.NoError(t, item.AddInflow(dec(10), dec(2.00), now, domain.SourcePurchase))

		assert.True(t, item.OnHand.Equal(dec(10)))
		assert.True(t, item.AverageCost.Equal(dec(2.00)))
		assert.Len(t, item.Ledger, 1)
	})

	t.Run("second_inflow_blends_average", func(t *testing.T) {
		item := newItem(domain.ValuationFIFO)
		require.NoError(t, item.AddInflow(dec(10), dec(2.00), now, domain.SourcePurchase))
		require.NoError(t, item.AddInflow(dec(5), dec(3.00), now, domain.SourcePurchase))

		assert.True(t, item.OnHand.Equal(dec(15)))
		want := dec(35).Div(dec(15))
		assert.True(t, item.AverageCost.Equal(want), "avg = %s want %s", item.AverageCost, want)
	})

	t.Run("rejects_non_positive_quantity", func(t *testing.T) {
		item := newItem(domain.ValuationFIFO)
		err := item.AddInflow(decimal.Zero, dec(1), now, domain.SourcePurchase)
		require.ErrorIs(t, err, domain.ErrNonPositiveQuantity)
	})

	t.Run("rejects_negative_cost", func(t *testing.T) {
		item := newItem(domain.ValuationFIFO)
		err := item.AddInflow(dec(1), dec(-1), now, domain.SourcePurchase)
		require.ErrorIs(t, err, domain.ErrNegativeCost)
	})
}

// Mirrors the FIFO purchase-then-sale flow: two receipts then a 12-unit sale.
func TestItem_Consume_FIFO(t *testing.T) {
	now := time.Now()
	item := newItem(domain.ValuationFIFO)
	require.NoError(t, item.AddInflow(dec(10), dec(2.00), now, domain.SourcePurchase))
	require.NoError(t, item.AddInflow(dec(5), dec(3.00), now.Add(time.Hour), domain.SourcePurchase))

	cogs, err := item.Consume(dec(12), now.Add(2*time.Hour))
	require.NoError(t, err)

	assert.True(t, cogs.Equal(dec(26)), "cogs = %s", cogs)
	assert.True(t, item.OnHand.Equal(dec(3)))
	assert.True(t, item.Ledger[0].Remaining.IsZero())
	assert.True(t, item.Ledger[1].Remaining.Equal(dec(3)))
}

func TestItem_Consume_LIFO(t *testing.T) {
	now := time.Now()
	item := newItem(domain.ValuationLIFO)
	require.NoError(t, item.AddInflow(dec(10), dec(2.00), now, domain.SourcePurchase))
	require.NoError(t, item.AddInflow(dec(5), dec(3.00), now.Add(time.Hour), domain.SourcePurchase))

	cogs, err := item.Consume(dec(12), now.Add(2*time.Hour))
	require.NoError(t, err)

	assert.True(t, cogs.Equal(dec(29)), "cogs = %s", cogs)
	assert.True(t, item.OnHand.Equal(dec(3)))
	assert.True(t, item.Ledger[0].Remaining.Equal(dec(3)))
	assert.True(t, item.Ledger[1].Remaining.IsZero())
}

func TestItem_Consume_WeightedAverage(t *testing.T) {
	now := time.Now()
	item := newItem(domain.ValuationWeightedAvg)
	require.NoError(t, item.AddInflow(dec(10), dec(2.00), now, domain.SourcePurchase))
	require.NoError(t, item.AddInflow(dec(5), dec(3.00), now, domain.SourcePurchase))

	avg := item.AverageCost
	cogs, err := item.Consume(dec(12), now)
	require.NoError(t, err)

	assert.True(t, cogs.Equal(dec(12).Mul(avg)), "cogs = %s", cogs)
	assert.True(t, item.OnHand.Equal(dec(3)))
	// Bookkeeping debits oldest layers first so on-hand == layer sum.
	assert.True(t, item.Ledger.TotalRemaining().Equal(item.OnHand))
}

func TestItem_Consume_InsufficientStockLeavesStateUntouched(t *testing.T) {
	now := time.Now()
	item := newItem(domain.ValuationFIFO)
	require.NoError(t, item.AddInflow(dec(3), dec(2.00), now, domain.SourcePurchase))

	before := *item
	beforeLedger := item.Ledger.Clone()

	_, err := item.Consume(dec(5), now)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, item.OnHand.Equal(before.OnHand))
	assert.True(t, item.AverageCost.Equal(before.AverageCost))
	assert.Equal(t, beforeLedger, item.Ledger)
}

// A cancelled sale restores stock via a restorative layer priced at the
// cost the goods left with.
func TestItem_Reverse(t *testing.T) {
	now := time.Now()
	item := newItem(domain.ValuationFIFO)
	require.NoError(t, item.AddInflow(dec(10), dec(2.00), now, domain.SourcePurchase))
	require.NoError(t, item.AddInflow(dec(5), dec(3.00), now, domain.SourcePurchase))

	cogs, err := item.Consume(dec(12), now)
	require.NoError(t, err)
	require.NoError(t, item.Reverse(dec(12), cogs, now))

	assert.True(t, item.OnHand.Equal(dec(15)))
	last := item.Ledger[len(item.Ledger)-1]
	assert.Equal(t, domain.SourceReturn, last.Source)
	assert.True(t, last.UnitCost.Equal(cogs.Div(dec(12))))
	assert.True(t, item.Ledger.TotalRemaining().Equal(item.OnHand))
}

func TestItem_Retract(t *testing.T) {
	now := time.Now()

	t.Run("full_retraction_no_warning", func(t *testing.T) {
		item := newItem(domain.ValuationFIFO)
		require.NoError(t, item.AddInflow(dec(10), dec(2.00), now, domain.SourcePurchase))

		warning, err := item.Retract(dec(10), now)
		require.NoError(t, err)
		assert.Nil(t, warning)
		assert.True(t, item.OnHand.IsZero())
	})

	t.Run("partially_consumed_clamps_to_zero_with_warning", func(t *testing.T) {
		item := newItem(domain.ValuationFIFO)
		require.NoError(t, item.AddInflow(dec(10), dec(2.00), now, domain.SourcePurchase))
		_, err := item.Consume(dec(6), now)
		require.NoError(t, err)

		warning, err := item.Retract(dec(10), now)
		require.NoError(t, err)
		require.NotNil(t, warning)
		assert.Equal(t, domain.WarnStockAlreadyConsumed, warning.Code)
		assert.True(t, item.OnHand.IsZero(), "on-hand clamps at zero, never negative")
		assert.True(t, item.Ledger.TotalRemaining().IsZero())
	})
}

// Conservation: sum of inflows minus outflows equals final on-hand, and
// on-hand always equals the layer sum, for random operation sequences
// under every valuation method.
func TestItem_ConservationUnderRandomSequences(t *testing.T) {
	methods := []domain.ValuationMethod{
		domain.ValuationFIFO, domain.ValuationLIFO, domain.ValuationWeightedAvg,
	}

	for _, method := range methods {
		t.Run(string(method), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			now := time.Now()
			item := newItem(method)

			balance := decimal.Zero
			for op := 0; op < 200; op++ {
				if rng.Intn(2) == 0 || !item.OnHand.IsPositive() {
					qty := decimal.NewFromInt(int64(rng.Intn(20) + 1))
					cost := decimal.NewFromInt(int64(rng.Intn(50)))
					require.NoError(t, item.AddInflow(qty, cost, now, domain.SourcePurchase))
					balance = balance.Add(qty)
				} else {
					qty := decimal.NewFromInt(int64(rng.Intn(20) + 1))
					_, err := item.Consume(qty, now)
					if qty.GreaterThan(balance) {
						require.ErrorIs(t, err, domain.ErrInsufficientStock)
						continue
					}
					require.NoError(t, err)
					balance = balance.Sub(qty)
				}

				require.True(t, item.OnHand.Equal(balance),
					"on-hand %s diverged from balance %s", item.OnHand, balance)
				require.True(t, item.Ledger.TotalRemaining().Equal(item.OnHand),
					"ledger sum diverged from on-hand")
				require.False(t, item.OnHand.IsNegative())
				for _, l := range item.Ledger {
					require.False(t, l.Remaining.IsNegative())
				}
			}
		})
	}
}

// Layer value always equals on-hand times average cost after every
// operation under weighted-average costing.
func TestItem_WeightedAverageLayerValueIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	now := time.Now()
	item := newItem(domain.ValuationWeightedAvg)

	layerValue := func() decimal.Decimal {
		total := decimal.Zero
		for _, l := range item.Ledger {
			total = total.Add(l.Remaining.Mul(l.UnitCost))
		}
		return total
	}

	epsilon := decimal.New(1, -6)
	for op := 0; op < 100; op++ {
		if rng.Intn(2) == 0 || !item.OnHand.IsPositive() {
			qty := decimal.NewFromInt(int64(rng.Intn(10) + 1))
			cost := decimal.NewFromInt(int64(rng.Intn(20) + 1))
			require.NoError(t, item.AddInflow(qty, cost, now, domain.SourcePurchase))
		} else {
			qty := decimal.NewFromInt(int64(rng.Intn(5) + 1))
			if _, err := item.Consume(qty, now); err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
				continue
			}
		}

		if item.OnHand.IsPositive() {
			diff := layerValue().Sub(item.OnHand.Mul(item.AverageCost)).Abs()
			bound := decimal.Max(decimal.NewFromInt(1), item.OnHand.Mul(item.AverageCost)).Mul(epsilon)
			require.True(t, diff.LessThanOrEqual(bound),
				"layer value drifted from on-hand * average: diff %s", diff)
		}
	}
}
