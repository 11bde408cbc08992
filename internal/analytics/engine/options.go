package engine

import (
	"time"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/scoring"
)

// Defaults applied to zero-valued options.
const (
	DefaultTrendDays      = 14
	DefaultSLATargetHours = 72
	DefaultStaleAfterDays = 45
	DefaultPayoutLagWeeks = 1
)

// Options parameterize one report build.
type Options struct {
	// AsOf anchors the trend window and staleness checks. It is the only clock the engine reads.
	AsOf           time.Time
	From           *time.Time
	To             *time.Time
	TrendDays      int
	SLATargetHours int
	StaleAfterDays int
	PayoutLagWeeks int
	Listing        scoring.ListingPolicy
	Compliance     scoring.CompliancePolicy
}

func (o Options) withDefaults() Options {
	o.AsOf = o.AsOf.UTC()
	if o.TrendDays <= 0 {
		o.TrendDays = DefaultTrendDays
	}
	if o.SLATargetHours <= 0 {
		o.SLATargetHours = DefaultSLATargetHours
	}
	if o.StaleAfterDays <= 0 {
		o.StaleAfterDays = DefaultStaleAfterDays
	}
	if o.PayoutLagWeeks <= 0 {
		o.PayoutLagWeeks = DefaultPayoutLagWeeks
	}
	if o.Listing == (scoring.ListingPolicy{}) {
		o.Listing = scoring.DefaultListingPolicy()
	}
	if o.Compliance == (scoring.CompliancePolicy{}) {
		o.Compliance = scoring.DefaultCompliancePolicy()
	}
	return o
}

func (o Options) staleAfter() time.Duration {
	return time.Duration(o.StaleAfterDays) * 24 * time.Hour
}

func (o Options) slaTarget() time.Duration {
	return time.Duration(o.SLATargetHours) * time.Hour
}
