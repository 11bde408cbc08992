package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Batch is the already-fetched input of one report build. It is never mutated by the engine.
type Batch struct {
	Orders          []RawOrder          `json:"orders"`
	Shipments       []RawShipment       `json:"shipments"`
	Reconciliations []RawReconciliation `json:"reconciliations"`
	Products        []RawProduct        `json:"products"`
}

// Len returns the total number of raw records in the batch.
func (b Batch) Len() int {
	return len(b.Orders) + len(b.Shipments) + len(b.Reconciliations) + len(b.Products)
}

// RawOrder is an order as received from upstream; every field may be missing or malformed.
type RawOrder struct {
	ID        string        `json:"id"`
	StoreID   string        `json:"store_id,omitempty"`
	OrderedAt *string       `json:"ordered_at"`
	Status    string        `json:"status"`
	Total     Number        `json:"total"`
	Items     []RawLineItem `json:"items,omitempty"`
	Payment   *RawPayment   `json:"payment,omitempty"`
	PrintJob  *RawPrintJob  `json:"print_job,omitempty"`
	Shipment  *RawShipment  `json:"shipment,omitempty"`
}

// RawLineItem is one item of an order.
type RawLineItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price Number `json:"price"`
}

// RawPayment is the payment reference attached to an order.
type RawPayment struct {
	Method string  `json:"method"`
	Amount Number  `json:"amount"`
	PaidAt *string `json:"paid_at"`
}

// RawPrintJob is the print-job reference attached to an order.
type RawPrintJob struct {
	Status string `json:"status"`
}

// RawShipment is a dispatch record. OrderID and OrderDate may be empty when the
// shipment is embedded in its order.
type RawShipment struct {
	ID         string  `json:"id"`
	OrderID    string  `json:"order_id"`
	OrderDate  *string `json:"order_date"`
	ShippedAt  *string `json:"shipped_at"`
	Method     string  `json:"method"`
	TrackingID string  `json:"tracking_id"`
}

// RawReconciliation is a settlement line.
type RawReconciliation struct {
	ID           string  `json:"id"`
	OrderID      string  `json:"order_id"`
	OrderDate    *string `json:"order_date"`
	ReconciledAt *string `json:"reconciled_at"`
	Status       string  `json:"status"`
	Amount       Number  `json:"amount"`
}

// RawProduct is a catalog listing, used to surface listings without orders in the window.
type RawProduct struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Price   Number `json:"price"`
	Channel string `json:"channel"`
}

// Number is an upstream numeric field. It keeps the raw text and accepts JSON numbers,
// numeric strings, empty strings and null; anything else decodes to an unknown value.
type Number struct {
	raw string
}

// NumberFromString wraps raw text.
func NumberFromString(value string) Number {
	return Number{raw: value}
}

// NumberFromFloat wraps a float; NaN and infinities are kept and later read as unknown.
func NumberFromFloat(value float64) Number {
	return Number{raw: strconv.FormatFloat(value, 'f', -1, 64)}
}

// NumberFromCents converts an integer amount of cents.
func NumberFromCents(cents int64) Number {
	return Number{raw: decimal.New(cents, -2).String()}
}

// Raw returns the text as received.
func (n Number) Raw() string {
	return n.raw
}

// Decimal parses the value. ok is false for missing, empty, unparseable or non-finite input.
func (n Number) Decimal() (decimal.Decimal, bool) {
	text := strings.TrimSpace(n.raw)
	if text == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, false
	}
	return d, true
}

// UnmarshalJSON never fails.
func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		n.raw = ""
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			n.raw = ""
			return nil
		}
		n.raw = s
	case trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9'):
		n.raw = string(trimmed)
	default:
		// objects, arrays and booleans are not numbers
		n.raw = "\x00" + string(trimmed)
	}
	return nil
}

// MarshalJSON writes a JSON number when the value is known and null otherwise.
func (n Number) MarshalJSON() ([]byte, error) {
	d, ok := n.Decimal()
	if !ok {
		return []byte("null"), nil
	}
	return []byte(d.String()), nil
}
