package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
)

// UnassignedChannel is the channel key of orders without a usable payment method.
const UnassignedChannel = "unassigned"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the accepted upstream layouts into UTC. malformed is true when text
// was present but could not be read.
func ParseTime(value *string) (parsed Optional[time.Time], malformed bool) {
	if value == nil {
		return None[time.Time](), false
	}
	text := strings.TrimSpace(*value)
	if text == "" {
		return None[time.Time](), false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return Some(t.UTC()), false
		}
	}
	return None[time.Time](), true
}

// ParseAmount reads a Number. malformed is true when text was present but unusable.
func ParseAmount(value types.Number) (parsed Optional[decimal.Decimal], malformed bool) {
	if d, ok := value.Decimal(); ok {
		return Some(d), false
	}
	return None[decimal.Decimal](), strings.TrimSpace(value.Raw()) != ""
}

// Channel derives the channel key from a payment method.
func Channel(method string) string {
	key := strings.ToLower(strings.TrimSpace(method))
	if key == "" {
		return UnassignedChannel
	}
	return key
}

func enumToken(value string) string {
	token := strings.ToLower(strings.TrimSpace(value))
	token = strings.ReplaceAll(token, "-", "_")
	return strings.ReplaceAll(token, " ", "_")
}
