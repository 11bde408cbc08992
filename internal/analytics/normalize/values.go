package normalize

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
)

// Optional is a value that may be unknown.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some wraps a known value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, Valid: true}
}

// None returns an unknown value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Ptr returns nil for unknown values.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// Field is a value that is always present but may have been substituted by a default.
type Field[T any] struct {
	Value     T
	Defaulted bool
}

// Order is a normalized upstream order with its optional payment, print job and shipment.
type Order struct {
	ID        string
	StoreID   string
	OrderedAt Optional[time.Time]
	Status    Field[enums.OrderStatus]
	Total     Field[decimal.Decimal]
	Channel   string
	Items     []LineItem
	Payment   Optional[Payment]
	PrintJob  Optional[PrintJob]
	Shipment  Optional[Shipment]
}

// Attached reports whether the order carries a payment reference.
func (o Order) Attached() bool {
	return o.Payment.Valid
}

// Cancelled reports whether the order ended cancelled.
func (o Order) Cancelled() bool {
	return o.Status.Value == enums.OrderStatusCancelled
}

// LineItem is one product line of an order.
type LineItem struct {
	ID    string
	Name  string
	Price Optional[decimal.Decimal]
}

// Payment is the payment reference attached to an order.
type Payment struct {
	Method string
	Amount Optional[decimal.Decimal]
	PaidAt Optional[time.Time]
}

// PrintJob is the label print job of an order.
type PrintJob struct {
	Status Field[enums.PrintJobStatus]
}

// Failed reports whether the print job failed.
func (p PrintJob) Failed() bool {
	return p.Status.Value == enums.PrintJobStatusFailed
}

// Shipment is a normalized shipment, either standalone or embedded in an order.
type Shipment struct {
	ID         string
	OrderID    string
	OrderDate  Optional[time.Time]
	ShippedAt  Optional[time.Time]
	Method     string
	TrackingID string
}

// Reconciliation is one settlement line for an order.
type Reconciliation struct {
	ID           string
	OrderID      string
	OrderDate    Optional[time.Time]
	ReconciledAt Optional[time.Time]
	Status       Field[enums.SettlementStatus]
	Amount       Field[decimal.Decimal]
}

// Product is a catalog listing used to seed listings without orders.
type Product struct {
	ID      string
	Title   string
	Status  Field[enums.ProductStatus]
	Price   Optional[decimal.Decimal]
	Channel string
}
