package scoring

import "github.com/shopspring/decimal"

// Pricing rule labels.
const (
	PricingFixed      = "fixed"
	PricingDynamic    = "dynamic"
	PricingAggressive = "aggressive"
)

var (
	repricingMinBand  = decimal.NewFromInt(2)
	repricingShare    = decimal.NewFromFloat(0.04)
	aggressiveMinBand = decimal.NewFromInt(5)
	aggressiveShare   = decimal.NewFromFloat(0.12)
)

// Band is a price ledger snapshot; nil means unknown.
type Band struct {
	Latest  *decimal.Decimal
	Floor   *decimal.Decimal
	Ceiling *decimal.Decimal
}

func (b Band) known() bool {
	return b.Latest != nil && b.Floor != nil && b.Ceiling != nil
}

func (b Band) width() decimal.Decimal {
	return b.Ceiling.Sub(*b.Floor)
}

// RepricingActive is true when the band is wider than max(2, 4% of latest).
func RepricingActive(b Band) bool {
	if !b.known() {
		return false
	}
	return b.width().GreaterThan(decimal.Max(repricingMinBand, b.Latest.Abs().Mul(repricingShare)))
}

// PricingRule labels the band: aggressive when wider than max(5, 12% of latest) as well,
// dynamic when repricing is active, fixed otherwise.
func PricingRule(b Band) string {
	if !RepricingActive(b) {
		return PricingFixed
	}
	if b.width().GreaterThan(decimal.Max(aggressiveMinBand, b.Latest.Abs().Mul(aggressiveShare))) {
		return PricingAggressive
	}
	return PricingDynamic
}
