package engine

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/normalize"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/scoring"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
)

// PriceLedger tracks the latest, previous, lowest and highest known price of a listing.
// After any sequence of observations Floor <= Latest <= Ceiling.
type PriceLedger struct {
	Latest   normalize.Optional[decimal.Decimal]
	Previous normalize.Optional[decimal.Decimal]
	Floor    normalize.Optional[decimal.Decimal]
	Ceiling  normalize.Optional[decimal.Decimal]
}

// Observe folds a known price. newer is true when the event is more recent than the
// listing's last order.
func (l *PriceLedger) Observe(price decimal.Decimal, newer bool) {
	if !l.Latest.Valid {
		l.Latest = normalize.Some(price)
		l.Floor = normalize.Some(price)
		l.Ceiling = normalize.Some(price)
		return
	}

	differs := !price.Equal(l.Latest.Value)
	switch {
	case newer:
		if !l.Previous.Valid && differs {
			l.Previous = normalize.Some(l.Latest.Value)
		}
		l.Latest = normalize.Some(price)
	case !l.Previous.Valid && differs:
		// out-of-order arrival
		l.Previous = normalize.Some(price)
	}

	if price.LessThan(l.Floor.Value) {
		l.Floor = normalize.Some(price)
	}
	if price.GreaterThan(l.Ceiling.Value) {
		l.Ceiling = normalize.Some(price)
	}
}

// Band exposes the ledger to the pricing rules.
func (l PriceLedger) Band() scoring.Band {
	return scoring.Band{
		Latest:  l.Latest.Ptr(),
		Floor:   l.Floor.Ptr(),
		Ceiling: l.Ceiling.Ptr(),
	}
}

func (l PriceLedger) view() types.PriceBand {
	return types.PriceBand{
		Latest:   moneyPtr(l.Latest),
		Previous: moneyPtr(l.Previous),
		Floor:    moneyPtr(l.Floor),
		Ceiling:  moneyPtr(l.Ceiling),
	}
}
