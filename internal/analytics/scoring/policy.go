// Package scoring holds the pure classification rules of the operations report.
//
// The listing view and the compliance view weigh the same kinds of incidents with
// different penalties and cutoffs. They are kept as two named policies.
package scoring

import "github.com/angelmondragon/packfinderz-ops/pkg/enums"

const (
	maxScore     = 100
	errorPenalty = 10
)

// Compliance levels.
const (
	LevelAction  = "action"
	LevelMonitor = "monitor"
	LevelHealthy = "healthy"
)

// Counts are the incident tallies a score is derived from.
type Counts struct {
	FailedPrints    int
	Cancellations   int
	PendingOrders   int
	MissingPayments int
}

// ListingPolicy scores a listing for the assortment view.
type ListingPolicy struct {
	FailedPrintWeight  int
	CancellationWeight int
	PendingWeight      int
	Floor              int
	FlagBelow          int
}

// DefaultListingPolicy returns the assortment weights.
func DefaultListingPolicy() ListingPolicy {
	return ListingPolicy{
		FailedPrintWeight:  25,
		CancellationWeight: 18,
		PendingWeight:      10,
		Floor:              40,
		FlagBelow:          85,
	}
}

// Score returns a value in [Floor, 100].
func (p ListingPolicy) Score(c Counts, status enums.ListingStatus) int {
	penalty := p.FailedPrintWeight*c.FailedPrints +
		p.CancellationWeight*c.Cancellations +
		p.PendingWeight*c.PendingOrders
	return applyPenalty(penalty, status, p.Floor)
}

// Flagged reports whether a score needs attention in the listing view.
func (p ListingPolicy) Flagged(score int) bool {
	return score < p.FlagBelow
}

// CompliancePolicy scores a listing for the compliance view.
type CompliancePolicy struct {
	FailedPrintWeight    int
	CancellationWeight   int
	MissingPaymentWeight int
	Floor                int
	ActionBelow          int
	MonitorBelow         int
}

// DefaultCompliancePolicy returns the compliance weights.
func DefaultCompliancePolicy() CompliancePolicy {
	return CompliancePolicy{
		FailedPrintWeight:    22,
		CancellationWeight:   18,
		MissingPaymentWeight: 12,
		Floor:                20,
		ActionBelow:          75,
		MonitorBelow:         90,
	}
}

// Score returns a value in [Floor, 100].
func (p CompliancePolicy) Score(c Counts, status enums.ListingStatus) int {
	penalty := p.FailedPrintWeight*c.FailedPrints +
		p.CancellationWeight*c.Cancellations +
		p.MissingPaymentWeight*c.MissingPayments
	return applyPenalty(penalty, status, p.Floor)
}

// Level classifies a compliance score.
func (p CompliancePolicy) Level(score int) string {
	switch {
	case score < p.ActionBelow:
		return LevelAction
	case score < p.MonitorBelow:
		return LevelMonitor
	default:
		return LevelHealthy
	}
}

func applyPenalty(penalty int, status enums.ListingStatus, floor int) int {
	if floor > maxScore {
		floor = maxScore
	}
	if penalty < 0 {
		penalty = 0
	}
	score := clamp(maxScore-penalty, floor)
	if status == enums.ListingStatusError {
		score = clamp(score-errorPenalty, floor)
	}
	return score
}

func clamp(score, floor int) int {
	if score < floor {
		return floor
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
