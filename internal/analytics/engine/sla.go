package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/normalize"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/timebucket"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
)

// SLAWeekBucket aggregates shipments dispatched in one ISO week.
type SLAWeekBucket struct {
	Week      string
	Shipments int
	Measured  int
	OnTime    int
	Breaches  []types.SLABreach
}

func newSLAWeekBucket(key string) *SLAWeekBucket {
	return &SLAWeekBucket{Week: key, Breaches: []types.SLABreach{}}
}

// shipmentKey identifies a shipment across the standalone stream and order references.
func shipmentKey(s normalize.Shipment, position int) string {
	switch {
	case s.ID != "":
		return "id:" + s.ID
	case s.OrderID != "":
		return fmt.Sprintf("order:%s:%s", s.OrderID, s.TrackingID)
	default:
		return fmt.Sprintf("position:%d", position)
	}
}

// collectShipments merges standalone shipments and order references, first occurrence
// wins. Missing order dates are filled from the order the shipment belongs to.
func collectShipments(standalone []normalize.Shipment, orders []normalize.Order) (shipments []normalize.Shipment, duplicates int) {
	orderDates := map[string]normalize.Optional[time.Time]{}
	for _, order := range orders {
		if order.ID != "" && order.OrderedAt.Valid {
			orderDates[order.ID] = order.OrderedAt
		}
	}

	seen := map[string]struct{}{}
	position := 0
	add := func(s normalize.Shipment) {
		position++
		key := shipmentKey(s, position)
		if _, ok := seen[key]; ok {
			duplicates++
			return
		}
		seen[key] = struct{}{}
		if !s.OrderDate.Valid {
			if date, ok := orderDates[s.OrderID]; ok {
				s.OrderDate = date
			}
		}
		shipments = append(shipments, s)
	}
	for _, s := range standalone {
		add(s)
	}
	for _, order := range orders {
		if order.Shipment.Valid {
			add(order.Shipment.Value)
		}
	}
	return shipments, duplicates
}

func buildSLA(shipments []normalize.Shipment, opts Options) (types.SLA, int) {
	weeks := NewStore(newSLAWeekBucket)
	summary := types.SLASummary{TargetHours: opts.SLATargetHours}
	undated := 0
	target := opts.slaTarget()

	for _, s := range shipments {
		summary.Shipments++

		var bucket *SLAWeekBucket
		switch {
		case s.ShippedAt.Valid:
			bucket = weeks.Upsert(timebucket.WeekKey(s.ShippedAt.Value))
		case s.OrderDate.Valid:
			bucket = weeks.Upsert(timebucket.WeekKey(s.OrderDate.Value))
		default:
			undated++
		}
		if bucket != nil {
			bucket.Shipments++
		}

		if !s.ShippedAt.Valid || !s.OrderDate.Valid {
			continue
		}
		lead := s.ShippedAt.Value.Sub(s.OrderDate.Value)
		summary.Measured++
		bucket.Measured++
		if lead <= target {
			summary.OnTime++
			bucket.OnTime++
			continue
		}
		summary.Breaches++
		bucket.Breaches = append(bucket.Breaches, types.SLABreach{
			ShipmentID:    s.ID,
			OrderID:       s.OrderID,
			LeadTimeHours: math.Round(lead.Hours()*100) / 100,
		})
	}
	summary.OnTimeRate = rate(summary.OnTime, summary.Measured)

	rows := make([]types.SLAWeek, 0, weeks.Len())
	for _, bucket := range weeks.Values() {
		sort.SliceStable(bucket.Breaches, func(i, j int) bool {
			a, b := bucket.Breaches[i], bucket.Breaches[j]
			if a.LeadTimeHours != b.LeadTimeHours {
				return a.LeadTimeHours > b.LeadTimeHours
			}
			if a.ShipmentID != b.ShipmentID {
				return a.ShipmentID < b.ShipmentID
			}
			return a.OrderID < b.OrderID
		})
		rows = append(rows, types.SLAWeek{
			Week:       bucket.Week,
			Shipments:  bucket.Shipments,
			Measured:   bucket.Measured,
			OnTime:     bucket.OnTime,
			OnTimeRate: rate(bucket.OnTime, bucket.Measured),
			Breaches:   bucket.Breaches,
		})
	}
	return types.SLA{Summary: summary, Weeks: rows}, undated
}
