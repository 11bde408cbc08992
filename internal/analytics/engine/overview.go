package engine

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/normalize"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
)

// buildSalesOverview counts orders by payment attachment and status. The average is taken
// over every order total; GMV excludes cancelled orders.
func buildSalesOverview(orders []normalize.Order) (types.SalesOverview, decimal.Decimal) {
	overview := types.SalesOverview{StatusCounts: map[string]int{}}
	sum := decimal.Zero
	gmv := decimal.Zero
	for _, order := range orders {
		overview.TotalOrders++
		if order.Attached() {
			overview.AttachedOrders++
		} else {
			overview.UnattachedOrders++
		}
		overview.StatusCounts[order.Status.Value.String()]++
		sum = sum.Add(order.Total.Value)
		if !order.Cancelled() {
			gmv = gmv.Add(order.Total.Value)
		}
	}
	if overview.TotalOrders > 0 {
		avg := money(sum.Div(decimal.NewFromInt(int64(overview.TotalOrders))))
		overview.AveragePrice = &avg
	}
	overview.GMV = money(gmv)
	return overview, gmv
}
