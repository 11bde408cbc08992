package engine

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/normalize"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/timebucket"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
)

// TrendBucket is the GMV and order count of one UTC day.
type TrendBucket struct {
	Day    string
	GMV    decimal.Decimal
	Orders int
}

func newTrendBucket(day string) *TrendBucket {
	return &TrendBucket{Day: day, GMV: decimal.Zero}
}

// buildTrend assembles a gap-free series of opts.TrendDays days ending on the AsOf day.
// Cancelled and undated orders are left out. The change compares two halves of equal
// length, so with an odd day count the oldest day is charted but not compared.
func buildTrend(orders []normalize.Order, opts Options) types.Trend {
	days := timebucket.DayRange(opts.AsOf, opts.TrendDays)
	buckets := NewStore(newTrendBucket)
	for _, day := range days {
		buckets.Upsert(day)
	}
	for _, order := range orders {
		if order.Cancelled() || !order.OrderedAt.Valid {
			continue
		}
		bucket, ok := buckets.Get(timebucket.DayKey(order.OrderedAt.Value))
		if !ok {
			continue
		}
		bucket.GMV = bucket.GMV.Add(order.Total.Value)
		bucket.Orders++
	}

	points := make([]types.TrendPoint, 0, len(days))
	first, second := decimal.Zero, decimal.Zero
	half := len(days) / 2
	skip := len(days) % 2
	for i, day := range days {
		bucket, _ := buckets.Get(day)
		switch {
		case i < skip:
			// oldest day of an odd window
		case i < skip+half:
			first = first.Add(bucket.GMV)
		default:
			second = second.Add(bucket.GMV)
		}
		points = append(points, types.TrendPoint{
			Date:   day,
			GMV:    money(bucket.GMV),
			Orders: bucket.Orders,
		})
	}

	return types.Trend{
		Points:        points,
		FirstHalfGMV:  money(first),
		SecondHalfGMV: money(second),
		Change:        PeriodChange(first, second),
	}
}

// PeriodChange is (second-first)/first. With an empty first half it is 1 when the
// second half is positive and 0 otherwise.
func PeriodChange(first, second decimal.Decimal) float64 {
	if first.IsZero() {
		if second.IsPositive() {
			return 1
		}
		return 0
	}
	return second.Sub(first).Div(first).Round(4).InexactFloat64()
}
