package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/normalize"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/scoring"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
)

// Task priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// Compliance task metrics.
const (
	MetricFailedPrints    = "failedPrints"
	MetricCancellations   = "cancellations"
	MetricMissingPayments = "missingPayments"
)

// ComplianceAccumulator tracks incident counts per listing, independently of the
// assortment view.
type ComplianceAccumulator struct {
	Key             string
	Orders          int
	Cancellations   int
	FailedPrints    int
	MissingPayments int
	Delivered       int
	LastActivityAt  normalize.Optional[time.Time]
}

func newComplianceAccumulator(key string) *ComplianceAccumulator {
	return &ComplianceAccumulator{Key: key}
}

func (c *ComplianceAccumulator) fold(order normalize.Order) {
	c.Orders++
	switch order.Status.Value {
	case enums.OrderStatusCancelled:
		c.Cancellations++
	case enums.OrderStatusDelivered:
		c.Delivered++
	}
	if order.PrintJob.Valid && order.PrintJob.Value.Failed() {
		c.FailedPrints++
	}
	if missingPayment(order) {
		c.MissingPayments++
	}
	c.LastActivityAt = later(c.LastActivityAt, order.OrderedAt)
	if order.Payment.Valid {
		c.LastActivityAt = later(c.LastActivityAt, order.Payment.Value.PaidAt)
	}
	if order.Shipment.Valid {
		c.LastActivityAt = later(c.LastActivityAt, order.Shipment.Value.ShippedAt)
	}
}

func buildCompliance(store *Store[ComplianceAccumulator], listings *Store[ListingAccumulator], policy scoring.CompliancePolicy) types.Compliance {
	rows := make([]types.ComplianceRow, 0, store.Len())
	for _, acc := range store.Values() {
		status := enums.ListingStatusPublished
		label := acc.Key
		if listing, ok := listings.Get(acc.Key); ok {
			status = listing.Status
			label = listing.Label
		}
		score := policy.Score(scoring.Counts{
			FailedPrints:    acc.FailedPrints,
			Cancellations:   acc.Cancellations,
			MissingPayments: acc.MissingPayments,
		}, status)
		rows = append(rows, types.ComplianceRow{
			Key:             acc.Key,
			Label:           label,
			Status:          status.String(),
			Level:           policy.Level(score),
			Score:           score,
			Orders:          acc.Orders,
			Cancellations:   acc.Cancellations,
			FailedPrints:    acc.FailedPrints,
			MissingPayments: acc.MissingPayments,
			Delivered:       acc.Delivered,
			LastActivityAt:  timePtr(acc.LastActivityAt),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score < rows[j].Score
		}
		return rows[i].Key < rows[j].Key
	})

	summary := types.ComplianceSummary{Listings: len(rows)}
	scores := make([]float64, 0, len(rows))
	tasks := []types.ComplianceTask{}
	for _, row := range rows {
		scores = append(scores, float64(row.Score))
		switch row.Level {
		case scoring.LevelAction:
			summary.Action++
		case scoring.LevelMonitor:
			summary.Monitor++
		default:
			summary.Healthy++
			continue
		}
		tasks = append(tasks, complianceTasks(row)...)
	}
	summary.AverageScore = mean(scores)

	return types.Compliance{
		Summary:  summary,
		Listings: rows,
		Tasks:    tasks,
	}
}

func complianceTasks(row types.ComplianceRow) []types.ComplianceTask {
	priority := PriorityMedium
	if row.Level == scoring.LevelAction {
		priority = PriorityHigh
	}
	metrics := []struct {
		name  string
		count int
		title string
	}{
		{MetricFailedPrints, row.FailedPrints, "Reprint %d failed label(s) for %s"},
		{MetricCancellations, row.Cancellations, "Review %d cancelled order(s) for %s"},
		{MetricMissingPayments, row.MissingPayments, "Attach payment to %d order(s) for %s"},
	}
	tasks := []types.ComplianceTask{}
	for _, m := range metrics {
		if m.count == 0 {
			continue
		}
		tasks = append(tasks, types.ComplianceTask{
			ListingKey: row.Key,
			Label:      row.Label,
			Metric:     m.name,
			Count:      m.count,
			Priority:   priority,
			Title:      fmt.Sprintf(m.title, m.count, row.Label),
		})
	}
	return tasks
}
