package scoring

import (
	"time"

	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
)

// CancellationErrorRatio is the share of cancelled orders above which a listing is in error.
const CancellationErrorRatio = 0.25

// ListingSignals are the final counts of a listing after the fold.
type ListingSignals struct {
	Orders       int
	Pending      int
	Cancelled    int
	FailedPrints int
	LastOrderAt  *time.Time
	// Catalog is the catalog status of a listing that has no orders in the window.
	Catalog *enums.ProductStatus
}

// CancellationRatio is cancelled/orders, zero when there are no orders.
func CancellationRatio(cancelled, orders int) float64 {
	if orders <= 0 {
		return 0
	}
	return float64(cancelled) / float64(orders)
}

// ListingStatus classifies a listing: error, then pending, then paused when stale, else published.
// A catalog draft that never sold stays draft.
func ListingStatus(s ListingSignals, asOf time.Time, staleAfter time.Duration) enums.ListingStatus {
	if s.FailedPrints > 0 || CancellationRatio(s.Cancelled, s.Orders) > CancellationErrorRatio {
		return enums.ListingStatusError
	}
	if s.Pending > 0 {
		return enums.ListingStatusPending
	}
	if s.Orders == 0 && s.Catalog != nil && *s.Catalog == enums.ProductStatusDraft {
		return enums.ListingStatusDraft
	}
	if Stale(s.LastOrderAt, asOf, staleAfter) {
		return enums.ListingStatusPaused
	}
	return enums.ListingStatusPublished
}

// Stale reports whether there was no order within staleAfter of asOf.
func Stale(lastOrderAt *time.Time, asOf time.Time, staleAfter time.Duration) bool {
	if lastOrderAt == nil {
		return true
	}
	return asOf.Sub(*lastOrderAt) > staleAfter
}

var statusRank = map[enums.ListingStatus]int{
	enums.ListingStatusError:     0,
	enums.ListingStatusPending:   1,
	enums.ListingStatusPaused:    2,
	enums.ListingStatusPublished: 3,
	enums.ListingStatusDraft:     4,
}

// StatusRank orders statuses for presentation, most urgent first.
func StatusRank(status enums.ListingStatus) int {
	if rank, ok := statusRank[status]; ok {
		return rank
	}
	return len(statusRank)
}
