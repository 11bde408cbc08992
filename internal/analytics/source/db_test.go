package source

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	"github.com/angelmondragon/packfinderz-ops/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-ops/pkg/errors"
)

var schema = []string{
	`CREATE TABLE vendor_orders (
		id TEXT PRIMARY KEY,
		buyer_store_id TEXT NOT NULL,
		vendor_store_id TEXT NOT NULL,
		order_number INTEGER NOT NULL,
		status TEXT NOT NULL,
		total_cents INTEGER,
		placed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE order_line_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		product_id TEXT,
		name TEXT NOT NULL,
		unit_price_cents INTEGER,
		qty INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME
	)`,
	`CREATE TABLE payment_intents (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		method TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'unpaid',
		amount_cents INTEGER,
		paid_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE print_jobs (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'queued',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE shipments (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		vendor_store_id TEXT NOT NULL,
		method TEXT,
		tracking_id TEXT,
		ordered_at DATETIME,
		shipped_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE reconciliations (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		vendor_store_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		amount_cents INTEGER,
		ordered_at DATETIME,
		reconciled_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL,
		sku TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		price_cents INTEGER,
		channel TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

var (
	windowStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	vendorID    = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	otherVendor = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	buyerID     = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func int64Ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(v string) *string { return &v }

type seeded struct {
	first, second, third uuid.UUID
	product              uuid.UUID
	shipment             uuid.UUID
}

func seed(t *testing.T, db *gorm.DB) seeded {
	t.Helper()
	s := seeded{
		first:    uuid.MustParse("10000000-0000-0000-0000-000000000001"),
		second:   uuid.MustParse("10000000-0000-0000-0000-000000000002"),
		third:    uuid.MustParse("10000000-0000-0000-0000-000000000003"),
		product:  uuid.MustParse("20000000-0000-0000-0000-000000000001"),
		shipment: uuid.MustParse("30000000-0000-0000-0000-000000000001"),
	}
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	orders := []models.VendorOrder{
		{ID: s.first, BuyerStoreID: buyerID, VendorStoreID: vendorID, OrderNumber: 1, Status: "delivered",
			TotalCents: int64Ptr(1250), PlacedAt: timePtr(base), CreatedAt: base},
		{ID: s.second, BuyerStoreID: buyerID, VendorStoreID: vendorID, OrderNumber: 2, Status: "created_pending",
			PlacedAt: timePtr(base.Add(time.Hour)), CreatedAt: base.Add(time.Hour)},
		{ID: s.third, BuyerStoreID: uuid.New(), VendorStoreID: vendorID, OrderNumber: 3, Status: "canceled",
			TotalCents: int64Ptr(900), CreatedAt: base.Add(2 * time.Hour)},
		{ID: uuid.New(), BuyerStoreID: buyerID, VendorStoreID: vendorID, OrderNumber: 4, Status: "delivered",
			TotalCents: int64Ptr(100), PlacedAt: timePtr(windowStart.AddDate(0, -2, 0)), CreatedAt: windowStart.AddDate(0, -2, 0)},
		{ID: uuid.New(), BuyerStoreID: buyerID, VendorStoreID: otherVendor, OrderNumber: 5, Status: "delivered",
			TotalCents: int64Ptr(100), PlacedAt: timePtr(base), CreatedAt: base.Add(3 * time.Hour)},
	}
	require.NoError(t, db.Create(&orders).Error)

	require.NoError(t, db.Create(&models.OrderLineItem{
		ID: uuid.New(), OrderID: s.first, ProductID: &s.product, Name: "Pre-roll 5pk", UnitPriceCents: int64Ptr(1250), Qty: 1, CreatedAt: base,
	}).Error)
	require.NoError(t, db.Create(&models.PaymentIntent{
		ID: uuid.New(), OrderID: s.first, Method: "card", Status: "paid", AmountCents: int64Ptr(1250),
		PaidAt: timePtr(base.Add(30 * time.Minute)), CreatedAt: base, UpdatedAt: base,
	}).Error)
	require.NoError(t, db.Create(&models.PrintJob{
		ID: uuid.New(), OrderID: s.first, Status: "failed", CreatedAt: base, UpdatedAt: base,
	}).Error)
	require.NoError(t, db.Create(&models.Shipment{
		ID: s.shipment, OrderID: s.first, VendorStoreID: vendorID, TrackingID: strPtr("1Z999"),
		OrderedAt: timePtr(base), ShippedAt: timePtr(base.Add(26 * time.Hour)), CreatedAt: base.Add(26 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&models.Reconciliation{
		ID: uuid.New(), OrderID: s.first, VendorStoreID: vendorID, Status: "complete", AmountCents: int64Ptr(1250),
		OrderedAt: timePtr(base), ReconciledAt: timePtr(base.AddDate(0, 0, 3)), CreatedAt: base.AddDate(0, 0, 3),
	}).Error)

	products := []models.Product{
		{ID: s.product, StoreID: vendorID, SKU: "PR-5", Title: "Pre-roll 5pk", Status: "published", PriceCents: int64Ptr(1300), CreatedAt: base, UpdatedAt: base},
		{ID: uuid.New(), StoreID: vendorID, SKU: "OLD-1", Title: "Retired", Status: "archived", CreatedAt: base.Add(time.Minute), UpdatedAt: base},
		{ID: uuid.New(), StoreID: otherVendor, SKU: "X-1", Title: "Elsewhere", Status: "published", CreatedAt: base.Add(2 * time.Minute), UpdatedAt: base},
	}
	require.NoError(t, db.Create(&products).Error)
	return s
}

func vendorQuery() types.Query {
	return types.Query{StoreID: vendorID.String(), Scope: types.ScopeVendor, Start: windowStart, End: windowEnd}
}

func TestDBSourceLoadsVendorWindow(t *testing.T) {
	db := openTestDB(t)
	ids := seed(t, db)

	src, err := NewDBSource(db, config.SourceConfig{PageSize: 2, MaxRecords: 100}, nil)
	require.NoError(t, err)

	batch, err := src.Load(context.Background(), vendorQuery())
	require.NoError(t, err)

	require.Len(t, batch.Orders, 3)
	assert.Equal(t, ids.first.String(), batch.Orders[0].ID)
	assert.Equal(t, ids.second.String(), batch.Orders[1].ID)
	assert.Equal(t, ids.third.String(), batch.Orders[2].ID)

	first := batch.Orders[0]
	assert.Equal(t, "12.5", first.Total.Raw())
	assert.Equal(t, "delivered", first.Status)
	require.NotNil(t, first.OrderedAt)
	assert.Equal(t, "2025-03-10T09:00:00Z", *first.OrderedAt)
	require.Len(t, first.Items, 1)
	assert.Equal(t, ids.product.String(), first.Items[0].ID)
	assert.Equal(t, "12.5", first.Items[0].Price.Raw())
	require.NotNil(t, first.Payment)
	assert.Equal(t, "card", first.Payment.Method)
	require.NotNil(t, first.PrintJob)
	assert.Equal(t, "failed", first.PrintJob.Status)
	require.NotNil(t, first.Shipment)
	assert.Equal(t, "1Z999", first.Shipment.TrackingID)

	second := batch.Orders[1]
	assert.Equal(t, "", second.Total.Raw())
	assert.Nil(t, second.Payment)
	assert.Equal(t, "created_pending", second.Status)

	// no placed_at: falls back to the creation time
	require.NotNil(t, batch.Orders[2].OrderedAt)
	assert.Equal(t, "2025-03-10T11:00:00Z", *batch.Orders[2].OrderedAt)

	require.Len(t, batch.Shipments, 1)
	assert.Equal(t, ids.shipment.String(), batch.Shipments[0].ID)
	require.Len(t, batch.Reconciliations, 1)
	assert.Equal(t, "complete", batch.Reconciliations[0].Status)
	assert.Equal(t, "12.5", batch.Reconciliations[0].Amount.Raw())

	require.Len(t, batch.Products, 1)
	assert.Equal(t, ids.product.String(), batch.Products[0].ID)
	assert.Equal(t, "13", batch.Products[0].Price.Raw())
}

func TestDBSourceBuyerScope(t *testing.T) {
	db := openTestDB(t)
	ids := seed(t, db)

	src, err := NewDBSource(db, config.SourceConfig{PageSize: 10}, nil)
	require.NoError(t, err)

	batch, err := src.Load(context.Background(), types.Query{
		StoreID: buyerID.String(), Scope: types.ScopeBuyer, Start: windowStart, End: windowEnd,
	})
	require.NoError(t, err)

	got := []string{}
	for _, order := range batch.Orders {
		got = append(got, order.ID)
	}
	assert.Len(t, got, 3)
	assert.Contains(t, got, ids.first.String())
	assert.Contains(t, got, ids.second.String())
	assert.NotContains(t, got, ids.third.String())
	assert.Empty(t, batch.Products)
	assert.Len(t, batch.Shipments, 1)
}

func TestDBSourceTruncatesAtRecordCap(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)

	src, err := NewDBSource(db, config.SourceConfig{PageSize: 1, MaxRecords: 2}, nil)
	require.NoError(t, err)

	batch, err := src.Load(context.Background(), vendorQuery())
	require.NoError(t, err)
	assert.Len(t, batch.Orders, 2)
}

func TestDBSourceValidatesQuery(t *testing.T) {
	src, err := NewDBSource(openTestDB(t), config.SourceConfig{}, nil)
	require.NoError(t, err)

	cases := map[string]types.Query{
		"bad scope":      {StoreID: "s", Scope: "owner", Start: windowStart, End: windowEnd},
		"missing store":  {Scope: types.ScopeVendor, Start: windowStart, End: windowEnd},
		"missing window": {StoreID: "s", Scope: types.ScopeVendor},
		"inverted":       {StoreID: "s", Scope: types.ScopeVendor, Start: windowEnd, End: windowStart},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := src.Load(context.Background(), q)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}

	_, err = NewDBSource(nil, config.SourceConfig{}, nil)
	assert.Error(t, err)
}

func TestDBSourceWrapsQueryFailures(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	src, err := NewDBSource(conn, config.SourceConfig{}, nil)
	require.NoError(t, err)

	_, err = src.Load(context.Background(), vendorQuery())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
