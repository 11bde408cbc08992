package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/normalize"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/scoring"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
)

// Channel health values.
const (
	ChannelDegraded = "degraded"
	ChannelIdle     = "idle"
	ChannelHealthy  = "healthy"
)

// ChannelAccumulator aggregates every order paid through one method.
type ChannelAccumulator struct {
	Key          string
	Orders       int
	Cancelled    int
	GMV          decimal.Decimal
	StatusCounts map[string]int
	LastSyncAt   normalize.Optional[time.Time]
	Members      map[string]struct{}
}

func newChannelAccumulator(key string) *ChannelAccumulator {
	return &ChannelAccumulator{
		Key:          key,
		GMV:          decimal.Zero,
		StatusCounts: map[string]int{},
		Members:      map[string]struct{}{},
	}
}

func (c *ChannelAccumulator) fold(order normalize.Order, listingKeys []string) {
	c.Orders++
	c.StatusCounts[order.Status.Value.String()]++
	if order.Cancelled() {
		c.Cancelled++
	} else {
		c.GMV = c.GMV.Add(order.Total.Value)
	}
	c.LastSyncAt = later(c.LastSyncAt, order.OrderedAt)
	if order.Payment.Valid {
		c.LastSyncAt = later(c.LastSyncAt, order.Payment.Value.PaidAt)
	}
	for _, key := range listingKeys {
		c.Members[key] = struct{}{}
	}
}

func (c *ChannelAccumulator) row(listings *Store[ListingAccumulator], totalGMV decimal.Decimal, opts Options) types.ChannelRow {
	issues := tagSet{}
	memberInError := false
	for key := range c.Members {
		listing, ok := listings.Get(key)
		if !ok {
			continue
		}
		issues.merge(listing.Issues)
		if listing.Status == enums.ListingStatusError {
			memberInError = true
		}
	}

	health := ChannelHealthy
	switch {
	case memberInError || scoring.CancellationRatio(c.Cancelled, c.Orders) > scoring.CancellationErrorRatio:
		health = ChannelDegraded
	case scoring.Stale(timePtr(c.LastSyncAt), opts.AsOf, opts.staleAfter()):
		health = ChannelIdle
	}

	return types.ChannelRow{
		Channel:      c.Key,
		Orders:       c.Orders,
		GMV:          money(c.GMV),
		GMVShare:     ratio(c.GMV, totalGMV),
		StatusCounts: c.StatusCounts,
		LastSyncAt:   timePtr(c.LastSyncAt),
		Listings:     len(c.Members),
		Issues:       issues.sorted(),
		Health:       health,
	}
}

// sortChannels puts the largest channels first, then by key.
func sortChannels(rows []types.ChannelRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].GMV != rows[j].GMV {
			return rows[i].GMV > rows[j].GMV
		}
		return rows[i].Channel < rows[j].Channel
	})
}
