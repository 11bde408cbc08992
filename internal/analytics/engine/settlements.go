package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/normalize"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/timebucket"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
)

// Settlement cycle statuses.
const (
	CycleAttentionNeeded = "Attention needed"
	CycleInProgress      = "In progress"
	CycleComplete        = "Complete"
)

// SettlementCycleAccumulator aggregates the reconciliations of one ISO week.
type SettlementCycleAccumulator struct {
	Week            string
	FirstDate       normalize.Optional[time.Time]
	LastDate        normalize.Optional[time.Time]
	Amount          decimal.Decimal
	PendingAmount   decimal.Decimal
	Records         int
	StatusCounts    map[enums.SettlementStatus]int
	OrderIDs        map[string]struct{}
	DaysToReconcile []float64
}

func newSettlementCycleAccumulator(week string) *SettlementCycleAccumulator {
	return &SettlementCycleAccumulator{
		Week:          week,
		Amount:        decimal.Zero,
		PendingAmount: decimal.Zero,
		StatusCounts:  map[enums.SettlementStatus]int{},
		OrderIDs:      map[string]struct{}{},
	}
}

// reconciliationDate is the date a line is bucketed by: reconciled-at, else the order date.
func reconciliationDate(r normalize.Reconciliation) normalize.Optional[time.Time] {
	if r.ReconciledAt.Valid {
		return r.ReconciledAt
	}
	return r.OrderDate
}

func (c *SettlementCycleAccumulator) fold(r normalize.Reconciliation, date time.Time) {
	c.Records++
	if !c.FirstDate.Valid || date.Before(c.FirstDate.Value) {
		c.FirstDate = normalize.Some(date)
	}
	c.LastDate = later(c.LastDate, normalize.Some(date))
	c.Amount = c.Amount.Add(r.Amount.Value)
	c.StatusCounts[r.Status.Value]++
	if r.Status.Value == enums.SettlementStatusPending {
		c.PendingAmount = c.PendingAmount.Add(r.Amount.Value)
	}
	if r.OrderID != "" {
		c.OrderIDs[r.OrderID] = struct{}{}
	}
	if r.ReconciledAt.Valid && r.OrderDate.Valid {
		c.DaysToReconcile = append(c.DaysToReconcile, timebucket.DaysBetween(r.OrderDate.Value, r.ReconciledAt.Value))
	}
}

// Status applies the priority failed > pending > complete.
func (c *SettlementCycleAccumulator) Status() string {
	switch {
	case c.StatusCounts[enums.SettlementStatusFailed] > 0:
		return CycleAttentionNeeded
	case c.StatusCounts[enums.SettlementStatusPending] > 0:
		return CycleInProgress
	default:
		return CycleComplete
	}
}

func (c *SettlementCycleAccumulator) row() types.SettlementCycle {
	counts := make(map[string]int, len(c.StatusCounts))
	for status, count := range c.StatusCounts {
		counts[status.String()] = count
	}
	return types.SettlementCycle{
		Week:                   c.Week,
		Status:                 c.Status(),
		FirstDate:              timePtr(c.FirstDate),
		LastDate:               timePtr(c.LastDate),
		Amount:                 money(c.Amount),
		PendingAmount:          money(c.PendingAmount),
		Records:                c.Records,
		Orders:                 len(c.OrderIDs),
		StatusCounts:           counts,
		AverageDaysToReconcile: mean(c.DaysToReconcile),
	}
}

func buildSettlements(reconciliations []normalize.Reconciliation, opts Options) (types.Settlements, int) {
	cycles := NewStore(newSettlementCycleAccumulator)
	undated := 0
	for _, r := range reconciliations {
		date := reconciliationDate(r)
		if !date.Valid {
			undated++
			continue
		}
		cycles.Upsert(timebucket.WeekKey(date.Value)).fold(r, date.Value)
	}

	summary := types.SettlementSummary{}
	total := decimal.Zero
	pending := decimal.Zero
	observations := []float64{}
	rows := make([]types.SettlementCycle, 0, cycles.Len())
	var oldestInProgress *SettlementCycleAccumulator
	for _, cycle := range cycles.Values() {
		summary.Cycles++
		switch cycle.Status() {
		case CycleAttentionNeeded:
			summary.AttentionNeeded++
		case CycleInProgress:
			summary.InProgress++
			if oldestInProgress == nil {
				oldestInProgress = cycle
			}
		default:
			summary.Complete++
		}
		total = total.Add(cycle.Amount)
		pending = pending.Add(cycle.PendingAmount)
		observations = append(observations, cycle.DaysToReconcile...)
		rows = append(rows, cycle.row())
	}
	summary.TotalAmount = money(total)
	summary.PendingAmount = money(pending)
	summary.AverageDaysToReconcile = mean(observations)

	// most recent cycle first
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Week > rows[j].Week })

	return types.Settlements{
		Summary:    summary,
		Cycles:     rows,
		NextPayout: nextPayout(oldestInProgress, opts.PayoutLagWeeks),
	}, undated
}

// nextPayout is expected on the Friday lagWeeks after the oldest cycle still in progress.
func nextPayout(cycle *SettlementCycleAccumulator, lagWeeks int) *types.NextPayout {
	if cycle == nil {
		return nil
	}
	monday, err := timebucket.WeekStart(cycle.Week)
	if err != nil {
		return nil
	}
	friday := monday.AddDate(0, 0, 7*lagWeeks+4)
	return &types.NextPayout{
		Week:         cycle.Week,
		ExpectedDate: timebucket.DayKey(friday),
		Amount:       money(cycle.PendingAmount),
	}
}
