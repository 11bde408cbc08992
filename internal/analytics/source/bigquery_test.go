package source

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	cloudbigquery "cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	pkgerrors "github.com/angelmondragon/packfinderz-ops/pkg/errors"
)

type fakeIterator struct {
	rows []MarketplaceEventRow
	next int
}

func (f *fakeIterator) Next(dst any) error {
	if f.next >= len(f.rows) {
		return iterator.Done
	}
	row, ok := dst.(*MarketplaceEventRow)
	if !ok {
		return errors.New("unexpected destination")
	}
	*row = f.rows[f.next]
	f.next++
	return nil
}

type fakeQuery struct {
	errs   []error
	rows   []MarketplaceEventRow
	calls  int
	sql    string
	params []cloudbigquery.QueryParameter
}

func (f *fakeQuery) run(_ context.Context, sql string, params []cloudbigquery.QueryParameter) (rowIterator, error) {
	f.calls++
	f.sql = sql
	f.params = params
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &fakeIterator{rows: f.rows}, nil
}

func nullString(v string) cloudbigquery.NullString {
	return cloudbigquery.NullString{StringVal: v, Valid: true}
}

func nullJSON(v string) cloudbigquery.NullJSON {
	return cloudbigquery.NullJSON{JSONVal: v, Valid: true}
}

func event(id, eventType, orderID string, at time.Time) MarketplaceEventRow {
	row := MarketplaceEventRow{
		EventID:       id,
		EventType:     eventType,
		OccurredAt:    at,
		VendorStoreID: nullString("vendor-1"),
	}
	if orderID != "" {
		row.OrderID = nullString(orderID)
	}
	return row
}

func sampleEvents() []MarketplaceEventRow {
	t0 := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	created := event("e1", "order_created", "o1", t0)
	created.Payload = nullJSON(`{"total_cents": 2500, "order_snapshot_status": "created_pending"}`)
	created.Items = nullJSON(`[{"product_id":"p1","title":"Gummies","unit_price_cents":1250},{"product_id":"p2","title":"Tincture","unit_price_cents":1250}]`)

	paid := event("e2", "order_paid", "o1", t0.Add(2*time.Hour))
	paid.Payload = nullJSON(`{"payment_method":"card","amount_cents":2500}`)

	printed := event("e3", "print_job_updated", "o1", t0.Add(3*time.Hour))
	printed.Payload = nullJSON(`{"status":"failed"}`)

	shipped := event("e4", "order_shipped", "o1", t0.Add(30*time.Hour))
	shipped.Payload = nullJSON(`{"shipment_id":"s1","tracking_id":"1Z1"}`)

	other := event("e5", "order_created", "o2", t0.Add(time.Hour))
	other.GrossRevenueCents = cloudbigquery.NullInt64{Int64: 990, Valid: true}
	other.Payload = nullJSON(`not json`)

	canceled := event("e6", "order_canceled", "o2", t0.Add(4*time.Hour))

	cash := event("e7", "cash_collected", "o2", t0.Add(5*time.Hour))

	refund := event("e8", "refund_initiated", "o2", t0.Add(6*time.Hour))
	refund.RefundCents = cloudbigquery.NullInt64{Int64: 990, Valid: true}

	return []MarketplaceEventRow{
		created, other, paid, printed, canceled, cash, refund, shipped,
		event("e9", "ad_click", "o1", t0),
		event("e10", "order_created", "", t0),
	}
}

func TestFoldEvents(t *testing.T) {
	batch := foldEvents(sampleEvents())

	require.Len(t, batch.Orders, 2)
	o1, o2 := batch.Orders[0], batch.Orders[1]

	assert.Equal(t, "o1", o1.ID)
	assert.Equal(t, "vendor-1", o1.StoreID)
	assert.Equal(t, "shipped", o1.Status)
	assert.Equal(t, "25", o1.Total.Raw())
	require.NotNil(t, o1.OrderedAt)
	assert.Equal(t, "2025-03-03T09:00:00Z", *o1.OrderedAt)
	require.Len(t, o1.Items, 2)
	assert.Equal(t, "p1", o1.Items[0].ID)
	assert.Equal(t, "12.5", o1.Items[0].Price.Raw())
	require.NotNil(t, o1.Payment)
	assert.Equal(t, "card", o1.Payment.Method)
	require.NotNil(t, o1.PrintJob)
	assert.Equal(t, "failed", o1.PrintJob.Status)
	require.NotNil(t, o1.Shipment)
	assert.Equal(t, "s1", o1.Shipment.ID)
	assert.Equal(t, o1.OrderedAt, o1.Shipment.OrderDate)

	assert.Equal(t, "o2", o2.ID)
	assert.Equal(t, "canceled", o2.Status)
	assert.Equal(t, "9.9", o2.Total.Raw())
	require.NotNil(t, o2.Payment)
	assert.Equal(t, "cash", o2.Payment.Method)

	require.Len(t, batch.Reconciliations, 3)
	assert.Equal(t, "complete", batch.Reconciliations[0].Status)
	assert.Equal(t, "o1", batch.Reconciliations[0].OrderID)
	assert.Equal(t, "25", batch.Reconciliations[0].Amount.Raw())
	assert.Equal(t, "pending", batch.Reconciliations[2].Status)
	assert.Nil(t, batch.Reconciliations[2].ReconciledAt)
	assert.Empty(t, batch.Shipments)
	assert.Empty(t, batch.Products)
}

func TestFoldEventsEmpty(t *testing.T) {
	batch := foldEvents(nil)
	assert.Equal(t, 0, batch.Len())
	assert.NotNil(t, batch.Orders)
	assert.NotNil(t, batch.Reconciliations)
}

func newTestBigQuerySource(t *testing.T, fake *fakeQuery) *BigQuerySource {
	t.Helper()
	src, err := newBigQuerySource(fake.run, "proj", "ds", "marketplace_events", 500, RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaximumBackoff: 2 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	return src
}

func bigQueryVendorQuery() types.Query {
	return types.Query{
		StoreID: "vendor-1",
		Scope:   types.ScopeVendor,
		Start:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestBigQuerySourceRetriesTransientErrors(t *testing.T) {
	fake := &fakeQuery{
		errs: []error{&googleapi.Error{Code: http.StatusServiceUnavailable}},
		rows: sampleEvents(),
	}
	src := newTestBigQuerySource(t, fake)

	batch, err := src.Load(context.Background(), bigQueryVendorQuery())
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
	assert.Len(t, batch.Orders, 2)

	assert.Contains(t, fake.sql, "vendor_store_id = @storeID")
	assert.Contains(t, fake.sql, "`proj.ds.marketplace_events`")
	names := []string{}
	for _, p := range fake.params {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"storeID", "eventTypes", "start", "end", "limit"}, names)
}

func TestBigQuerySourceStopsOnPermanentErrors(t *testing.T) {
	fake := &fakeQuery{errs: []error{&googleapi.Error{Code: http.StatusBadRequest}}}
	src := newTestBigQuerySource(t, fake)

	_, err := src.Load(context.Background(), bigQueryVendorQuery())
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestBigQuerySourceGivesUpAfterMaxAttempts(t *testing.T) {
	unavailable := status.Error(codes.Unavailable, "try later")
	fake := &fakeQuery{errs: []error{unavailable, unavailable, unavailable, unavailable}}
	src := newTestBigQuerySource(t, fake)

	_, err := src.Load(context.Background(), bigQueryVendorQuery())
	require.Error(t, err)
	assert.Equal(t, 3, fake.calls)
}

func TestBigQuerySourceAdminScope(t *testing.T) {
	fake := &fakeQuery{}
	src := newTestBigQuerySource(t, fake)

	q := bigQueryVendorQuery()
	q.Scope = types.ScopeAdmin
	q.StoreID = ""
	_, err := src.Load(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, strings.Contains(fake.sql, "WHERE TRUE"))
}

func TestNewBigQuerySourceValidation(t *testing.T) {
	_, err := NewBigQuerySource(nil, "p", "d", "t", 0, RetryPolicy{}, nil)
	assert.Error(t, err)

	fake := &fakeQuery{}
	_, err = newBigQuerySource(fake.run, "p", " ", "t", 0, RetryPolicy{}, nil)
	assert.Error(t, err)
}

func TestIsRetryableBigQueryError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"backend reason", &googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}}}, true},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"grpc unavailable", status.Error(codes.Unavailable, "x"), true},
		{"grpc invalid", status.Error(codes.InvalidArgument, "x"), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isRetryableBigQueryError(tc.err))
		})
	}
}
