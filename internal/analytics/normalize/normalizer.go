// Package normalize turns raw upstream records into value objects the engine can fold
// without further checks. Nothing here returns an error: unreadable input becomes an
// unknown value or a documented default, and every substitution is counted by field.
package normalize

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
)

// Anomaly field names.
const (
	FieldOrderDate            = "order.orderedAt"
	FieldOrderStatus          = "order.status"
	FieldOrderTotal           = "order.total"
	FieldItemPrice            = "item.price"
	FieldPaymentAmount        = "payment.amount"
	FieldPaymentDate          = "payment.paidAt"
	FieldPrintJobStatus       = "printJob.status"
	FieldShipmentOrderDate    = "shipment.orderDate"
	FieldShipmentDate         = "shipment.shippedAt"
	FieldReconciliationStatus = "reconciliation.status"
	FieldReconciliationAmount = "reconciliation.amount"
	FieldReconciliationDate   = "reconciliation.reconciledAt"
	FieldReconciliationOrder  = "reconciliation.orderDate"
	FieldProductStatus        = "product.status"
	FieldProductPrice         = "product.price"
)

// Normalizer converts raw records and tallies anomalies. It is not safe for concurrent use;
// each report build owns one.
type Normalizer struct {
	anomalies map[string]int
}

// New returns an empty normalizer.
func New() *Normalizer {
	return &Normalizer{anomalies: map[string]int{}}
}

// Anomalies returns a copy of the per-field substitution counts.
func (n *Normalizer) Anomalies() map[string]int {
	out := make(map[string]int, len(n.anomalies))
	for field, count := range n.anomalies {
		out[field] = count
	}
	return out
}

// AnomalyFields lists the fields with at least one anomaly, sorted.
func (n *Normalizer) AnomalyFields() []string {
	fields := make([]string, 0, len(n.anomalies))
	for field := range n.anomalies {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (n *Normalizer) record(field string) {
	n.anomalies[field]++
}

func (n *Normalizer) date(field string, value *string) Optional[time.Time] {
	parsed, malformed := ParseTime(value)
	if malformed {
		n.record(field)
	}
	return parsed
}

func (n *Normalizer) amount(field string, value types.Number) Optional[decimal.Decimal] {
	parsed, malformed := ParseAmount(value)
	if malformed {
		n.record(field)
	}
	return parsed
}

// amountOr substitutes def for missing or malformed input and always counts the substitution.
func (n *Normalizer) amountOr(field string, value types.Number, def decimal.Decimal) Field[decimal.Decimal] {
	parsed, _ := ParseAmount(value)
	if parsed.Valid {
		return Field[decimal.Decimal]{Value: parsed.Value}
	}
	n.record(field)
	return Field[decimal.Decimal]{Value: def, Defaulted: true}
}

func countDefault[T any](n *Normalizer, field string, value Field[T]) Field[T] {
	if value.Defaulted {
		n.record(field)
	}
	return value
}

// Order normalizes an order and its embedded references.
func (n *Normalizer) Order(raw types.RawOrder) Order {
	order := Order{
		ID:        strings.TrimSpace(raw.ID),
		StoreID:   strings.TrimSpace(raw.StoreID),
		OrderedAt: n.date(FieldOrderDate, raw.OrderedAt),
		Status:    countDefault(n, FieldOrderStatus, OrderStatus(raw.Status)),
		Total:     n.amountOr(FieldOrderTotal, raw.Total, decimal.Zero),
		Channel:   UnassignedChannel,
	}

	if len(raw.Items) > 0 {
		order.Items = make([]LineItem, 0, len(raw.Items))
		for _, item := range raw.Items {
			order.Items = append(order.Items, LineItem{
				ID:    strings.TrimSpace(item.ID),
				Name:  strings.TrimSpace(item.Name),
				Price: n.amount(FieldItemPrice, item.Price),
			})
		}
	}

	if raw.Payment != nil {
		order.Payment = Some(Payment{
			Method: strings.TrimSpace(raw.Payment.Method),
			Amount: n.amount(FieldPaymentAmount, raw.Payment.Amount),
			PaidAt: n.date(FieldPaymentDate, raw.Payment.PaidAt),
		})
		order.Channel = Channel(raw.Payment.Method)
	}

	if raw.PrintJob != nil {
		order.PrintJob = Some(PrintJob{
			Status: countDefault(n, FieldPrintJobStatus, PrintJobStatus(raw.PrintJob.Status)),
		})
	}

	if raw.Shipment != nil {
		shipment := n.Shipment(*raw.Shipment)
		if shipment.OrderID == "" {
			shipment.OrderID = order.ID
		}
		if !shipment.OrderDate.Valid {
			shipment.OrderDate = order.OrderedAt
		}
		order.Shipment = Some(shipment)
	}
	return order
}

// Shipment normalizes a dispatch record.
func (n *Normalizer) Shipment(raw types.RawShipment) Shipment {
	return Shipment{
		ID:         strings.TrimSpace(raw.ID),
		OrderID:    strings.TrimSpace(raw.OrderID),
		OrderDate:  n.date(FieldShipmentOrderDate, raw.OrderDate),
		ShippedAt:  n.date(FieldShipmentDate, raw.ShippedAt),
		Method:     strings.TrimSpace(raw.Method),
		TrackingID: strings.TrimSpace(raw.TrackingID),
	}
}

// Reconciliation normalizes a settlement line; a missing amount counts as zero.
func (n *Normalizer) Reconciliation(raw types.RawReconciliation) Reconciliation {
	return Reconciliation{
		ID:           strings.TrimSpace(raw.ID),
		OrderID:      strings.TrimSpace(raw.OrderID),
		OrderDate:    n.date(FieldReconciliationOrder, raw.OrderDate),
		ReconciledAt: n.date(FieldReconciliationDate, raw.ReconciledAt),
		Status:       countDefault(n, FieldReconciliationStatus, SettlementStatus(raw.Status)),
		Amount:       n.amountOr(FieldReconciliationAmount, raw.Amount, decimal.Zero),
	}
}

// Product normalizes a catalog entry.
func (n *Normalizer) Product(raw types.RawProduct) Product {
	return Product{
		ID:      strings.TrimSpace(raw.ID),
		Title:   strings.TrimSpace(raw.Title),
		Status:  countDefault(n, FieldProductStatus, ProductStatus(raw.Status)),
		Price:   n.amount(FieldProductPrice, raw.Price),
		Channel: Channel(raw.Channel),
	}
}
