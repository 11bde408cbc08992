package engine

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLedgerChronologicalPrices(t *testing.T) {
	var ledger PriceLedger
	for _, p := range []int64{10, 10, 15} {
		ledger.Observe(decimal.NewFromInt(p), true)
	}
	require.True(t, ledger.Latest.Valid)
	require.True(t, ledger.Previous.Valid)
	assert.Equal(t, "15", ledger.Latest.Value.String())
	assert.Equal(t, "10", ledger.Previous.Value.String())
	assert.Equal(t, "10", ledger.Floor.Value.String())
	assert.Equal(t, "15", ledger.Ceiling.Value.String())
}

func TestPriceLedgerOutOfOrderArrival(t *testing.T) {
	var ledger PriceLedger
	ledger.Observe(decimal.NewFromInt(20), true)
	ledger.Observe(decimal.NewFromInt(18), false)
	assert.Equal(t, "20", ledger.Latest.Value.String())
	assert.Equal(t, "18", ledger.Previous.Value.String())
	assert.Equal(t, "18", ledger.Floor.Value.String())

	// previous is only filled once
	ledger.Observe(decimal.NewFromInt(25), true)
	assert.Equal(t, "25", ledger.Latest.Value.String())
	assert.Equal(t, "18", ledger.Previous.Value.String())
	assert.Equal(t, "25", ledger.Ceiling.Value.String())
}

func TestPriceLedgerFirstObservationLeavesPreviousUnset(t *testing.T) {
	var ledger PriceLedger
	ledger.Observe(decimal.NewFromInt(7), false)
	assert.False(t, ledger.Previous.Valid)
	assert.Equal(t, ledger.Latest, ledger.Floor)
	assert.Equal(t, ledger.Latest, ledger.Ceiling)
}

func TestPriceLedgerBoundsInvariant(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("floor <= latest <= ceiling", prop.ForAll(
		func(prices []int, newer []bool) bool {
			var ledger PriceLedger
			for i, p := range prices {
				ledger.Observe(decimal.NewFromInt(int64(p)), i < len(newer) && newer[i])
				if !ledger.Floor.Value.LessThanOrEqual(ledger.Latest.Value) ||
					!ledger.Latest.Value.LessThanOrEqual(ledger.Ceiling.Value) ||
					!ledger.Floor.Value.LessThanOrEqual(ledger.Ceiling.Value) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 500)),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
