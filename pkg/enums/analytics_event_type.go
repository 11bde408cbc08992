package enums

import "fmt"

// AnalyticsEventType is the event_type column of the marketplace_events table.
type AnalyticsEventType string

const (
	AnalyticsEventOrderCreated    AnalyticsEventType = "order_created"
	AnalyticsEventOrderPaid       AnalyticsEventType = "order_paid"
	AnalyticsEventCashCollected   AnalyticsEventType = "cash_collected"
	AnalyticsEventOrderCanceled   AnalyticsEventType = "order_canceled"
	AnalyticsEventOrderExpired    AnalyticsEventType = "order_expired"
	AnalyticsEventOrderShipped    AnalyticsEventType = "order_shipped"
	AnalyticsEventPrintJobUpdated AnalyticsEventType = "print_job_updated"
	AnalyticsEventRefundInitiated AnalyticsEventType = "refund_initiated"
)

var validAnalyticsEventTypes = []AnalyticsEventType{
	AnalyticsEventOrderCreated,
	AnalyticsEventOrderPaid,
	AnalyticsEventCashCollected,
	AnalyticsEventOrderCanceled,
	AnalyticsEventOrderExpired,
	AnalyticsEventOrderShipped,
	AnalyticsEventPrintJobUpdated,
	AnalyticsEventRefundInitiated,
}

// AnalyticsEventTypes returns every event type the operations report reads.
func AnalyticsEventTypes() []string {
	out := make([]string, 0, len(validAnalyticsEventTypes))
	for _, candidate := range validAnalyticsEventTypes {
		out = append(out, string(candidate))
	}
	return out
}

// IsValid reports whether the value matches a known analytics event type.
func (a AnalyticsEventType) IsValid() bool {
	for _, candidate := range validAnalyticsEventTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAnalyticsEventType converts the raw string to AnalyticsEventType.
func ParseAnalyticsEventType(value string) (AnalyticsEventType, error) {
	for _, candidate := range validAnalyticsEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid analytics event type %q", value)
}
