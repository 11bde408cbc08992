package source

import (
	"encoding/json"
	"strings"

	cloudbigquery "cloud.google.com/go/bigquery"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
)

const (
	defaultPaidMethod = "ach"
	cashMethod        = "cash"
)

// Raw status tokens written by the fold; the normalizer maps them like any upstream value.
const (
	eventStatusCreated   = "created_pending"
	eventStatusAccepted  = "accepted"
	eventStatusShipped   = "shipped"
	eventStatusDelivered = "delivered"
	eventStatusCanceled  = "canceled"
	eventStatusExpired   = "expired"
)

var eventStatusRank = map[string]int{
	eventStatusCreated:   0,
	eventStatusAccepted:  1,
	eventStatusShipped:   2,
	eventStatusDelivered: 3,
	eventStatusCanceled:  4,
	eventStatusExpired:   4,
}

type createdPayload struct {
	TotalCents          *int64 `json:"total_cents"`
	OrderSnapshotStatus string `json:"order_snapshot_status"`
}

type createdItem struct {
	ProductID      string `json:"product_id"`
	Title          string `json:"title"`
	UnitPriceCents *int64 `json:"unit_price_cents"`
}

type paymentPayload struct {
	PaymentMethod string `json:"payment_method"`
	AmountCents   *int64 `json:"amount_cents"`
}

type shippedPayload struct {
	ShipmentID string `json:"shipment_id"`
	Method     string `json:"method"`
	TrackingID string `json:"tracking_id"`
}

type printJobPayload struct {
	Status string `json:"status"`
}

// eventFold replays order events into one raw order per order id.
type eventFold struct {
	orders          map[string]*types.RawOrder
	sequence        []string
	reconciliations []types.RawReconciliation
}

// foldEvents rebuilds orders, their references and settlement lines from events sorted by time.
// Events without an order id are ignored; unreadable payloads leave the affected fields empty.
func foldEvents(rows []MarketplaceEventRow) types.Batch {
	f := &eventFold{orders: map[string]*types.RawOrder{}}
	for _, row := range rows {
		f.apply(row)
	}
	batch := types.Batch{
		Orders:          make([]types.RawOrder, 0, len(f.sequence)),
		Shipments:       []types.RawShipment{},
		Reconciliations: f.reconciliations,
		Products:        []types.RawProduct{},
	}
	if batch.Reconciliations == nil {
		batch.Reconciliations = []types.RawReconciliation{}
	}
	for _, id := range f.sequence {
		batch.Orders = append(batch.Orders, *f.orders[id])
	}
	return batch
}

func (f *eventFold) order(row MarketplaceEventRow) *types.RawOrder {
	id := strings.TrimSpace(row.OrderID.StringVal)
	if existing, ok := f.orders[id]; ok {
		return existing
	}
	order := &types.RawOrder{ID: id, StoreID: row.VendorStoreID.StringVal}
	f.orders[id] = order
	f.sequence = append(f.sequence, id)
	return order
}

func (f *eventFold) apply(row MarketplaceEventRow) {
	if !row.OrderID.Valid || strings.TrimSpace(row.OrderID.StringVal) == "" {
		return
	}
	eventType, err := enums.ParseAnalyticsEventType(row.EventType)
	if err != nil {
		return
	}
	order := f.order(row)
	at := formatTime(&row.OccurredAt)

	switch eventType {
	case enums.AnalyticsEventOrderCreated:
		var payload createdPayload
		decodeJSON(row.Payload, &payload)
		order.OrderedAt = at
		status := strings.TrimSpace(payload.OrderSnapshotStatus)
		if status == "" {
			status = eventStatusCreated
		}
		if order.Status == "" {
			order.Status = status
		}
		switch {
		case payload.TotalCents != nil:
			order.Total = types.NumberFromCents(*payload.TotalCents)
		case row.GrossRevenueCents.Valid:
			order.Total = types.NumberFromCents(row.GrossRevenueCents.Int64)
		}
		var items []createdItem
		decodeJSON(row.Items, &items)
		order.Items = order.Items[:0]
		for _, item := range items {
			order.Items = append(order.Items, types.RawLineItem{
				ID:    item.ProductID,
				Name:  item.Title,
				Price: cents(item.UnitPriceCents),
			})
		}

	case enums.AnalyticsEventOrderPaid, enums.AnalyticsEventCashCollected:
		var payload paymentPayload
		decodeJSON(row.Payload, &payload)
		method := strings.TrimSpace(payload.PaymentMethod)
		status := eventStatusAccepted
		if eventType == enums.AnalyticsEventCashCollected {
			method = cashMethod
			status = eventStatusDelivered
		} else if method == "" {
			method = defaultPaidMethod
		}
		amount := cents(payload.AmountCents)
		if payload.AmountCents == nil && row.GrossRevenueCents.Valid {
			amount = types.NumberFromCents(row.GrossRevenueCents.Int64)
		}
		order.Payment = &types.RawPayment{Method: method, Amount: amount, PaidAt: at}
		advanceStatus(order, status)
		f.reconciliations = append(f.reconciliations, types.RawReconciliation{
			ID:           row.EventID,
			OrderID:      order.ID,
			OrderDate:    order.OrderedAt,
			ReconciledAt: at,
			Status:       enums.SettlementStatusComplete.String(),
			Amount:       amount,
		})

	case enums.AnalyticsEventOrderCanceled:
		advanceStatus(order, eventStatusCanceled)

	case enums.AnalyticsEventOrderExpired:
		advanceStatus(order, eventStatusExpired)

	case enums.AnalyticsEventOrderShipped:
		var payload shippedPayload
		decodeJSON(row.Payload, &payload)
		id := strings.TrimSpace(payload.ShipmentID)
		if id == "" {
			id = row.EventID
		}
		order.Shipment = &types.RawShipment{
			ID:         id,
			OrderID:    order.ID,
			OrderDate:  order.OrderedAt,
			ShippedAt:  at,
			Method:     payload.Method,
			TrackingID: payload.TrackingID,
		}
		advanceStatus(order, eventStatusShipped)

	case enums.AnalyticsEventPrintJobUpdated:
		var payload printJobPayload
		decodeJSON(row.Payload, &payload)
		order.PrintJob = &types.RawPrintJob{Status: payload.Status}

	case enums.AnalyticsEventRefundInitiated:
		amount := types.Number{}
		if row.RefundCents.Valid {
			amount = types.NumberFromCents(row.RefundCents.Int64)
		}
		f.reconciliations = append(f.reconciliations, types.RawReconciliation{
			ID:        row.EventID,
			OrderID:   order.ID,
			OrderDate: order.OrderedAt,
			Status:    enums.SettlementStatusPending.String(),
			Amount:    amount,
		})
	}
}

// advanceStatus only moves an order forward; a terminal status is never replaced.
func advanceStatus(order *types.RawOrder, status string) {
	current, known := eventStatusRank[order.Status]
	if order.Status == "" || !known || eventStatusRank[status] >= current {
		order.Status = status
	}
}

func decodeJSON(value cloudbigquery.NullJSON, dst any) {
	if !value.Valid || strings.TrimSpace(value.JSONVal) == "" {
		return
	}
	_ = json.Unmarshal([]byte(value.JSONVal), dst)
}

