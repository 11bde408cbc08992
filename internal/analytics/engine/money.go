package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/normalize"
)

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func moneyPtr(o normalize.Optional[decimal.Decimal]) *float64 {
	if !o.Valid {
		return nil
	}
	v := money(o.Value)
	return &v
}

// ratio divides safely; a zero denominator yields zero.
func ratio(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Div(den).Round(4).InexactFloat64()
}

// rate is num/den rounded to four places, or nil when den is zero.
func rate(num, den int) *float64 {
	if den <= 0 {
		return nil
	}
	v := decimal.NewFromInt(int64(num)).Div(decimal.NewFromInt(int64(den))).Round(4).InexactFloat64()
	return &v
}

// mean returns nil for an empty slice.
func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2).InexactFloat64()
	return &avg
}

func timePtr(o normalize.Optional[time.Time]) *time.Time {
	if !o.Valid {
		return nil
	}
	t := o.Value
	return &t
}

// later keeps the most recent known time.
func later(current normalize.Optional[time.Time], candidate normalize.Optional[time.Time]) normalize.Optional[time.Time] {
	if !candidate.Valid {
		return current
	}
	if !current.Valid || candidate.Value.After(current.Value) {
		return candidate
	}
	return current
}
