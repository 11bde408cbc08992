package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	"github.com/angelmondragon/packfinderz-ops/pkg/db/models"
	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-ops/pkg/errors"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
	"github.com/angelmondragon/packfinderz-ops/pkg/pagination"
)

// DBSource reads the mirrored order-management tables through GORM, one keyset page at a time.
type DBSource struct {
	db         *gorm.DB
	pageSize   int
	maxRecords int
	logg       *logger.Logger
}

// NewDBSource binds a source to the provided connection.
func NewDBSource(db *gorm.DB, cfg config.SourceConfig, logg *logger.Logger) (*DBSource, error) {
	if db == nil {
		return nil, errors.New("db required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &DBSource{
		db:         db,
		pageSize:   pagination.NormalizeLimit(cfg.PageSize),
		maxRecords: cfg.MaxRecords,
		logg:       logg,
	}, nil
}

// Load fetches orders placed in the window with their references, the standalone shipments
// and reconciliations dated in the window, and the vendor catalog.
func (s *DBSource) Load(ctx context.Context, q types.Query) (types.Batch, error) {
	if err := validateQuery(q); err != nil {
		return types.Batch{}, err
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"source": "db", "scope": string(q.Scope)})

	orders, err := s.loadOrders(ctx, q)
	if err != nil {
		return types.Batch{}, wrapDB(err, "load orders")
	}
	shipments, err := s.loadShipments(ctx, q)
	if err != nil {
		return types.Batch{}, wrapDB(err, "load shipments")
	}
	reconciliations, err := s.loadReconciliations(ctx, q)
	if err != nil {
		return types.Batch{}, wrapDB(err, "load reconciliations")
	}
	products, err := s.loadProducts(ctx, q)
	if err != nil {
		return types.Batch{}, wrapDB(err, "load products")
	}

	batch := types.Batch{
		Orders:          make([]types.RawOrder, 0, len(orders)),
		Shipments:       make([]types.RawShipment, 0, len(shipments)),
		Reconciliations: make([]types.RawReconciliation, 0, len(reconciliations)),
		Products:        make([]types.RawProduct, 0, len(products)),
	}
	for _, order := range orders {
		batch.Orders = append(batch.Orders, orderRecord(order))
	}
	for _, shipment := range shipments {
		batch.Shipments = append(batch.Shipments, shipmentRecord(shipment))
	}
	for _, line := range reconciliations {
		batch.Reconciliations = append(batch.Reconciliations, reconciliationRecord(line))
	}
	for _, product := range products {
		batch.Products = append(batch.Products, productRecord(product))
	}
	return batch, nil
}

func wrapDB(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

// scopedOrders narrows a vendor_orders query to the store the report is for.
func scopedOrders(tx *gorm.DB, q types.Query) *gorm.DB {
	switch q.Scope {
	case types.ScopeVendor:
		return tx.Where("vendor_store_id = ?", q.StoreID)
	case types.ScopeBuyer:
		return tx.Where("buyer_store_id = ?", q.StoreID)
	default:
		return tx
	}
}

// scopedByOrder narrows a child table through the scoped order ids.
func (s *DBSource) scopedByOrder(ctx context.Context, tx *gorm.DB, q types.Query) *gorm.DB {
	if q.Scope == types.ScopeAdmin {
		return tx
	}
	ids := scopedOrders(s.db.WithContext(ctx).Model(&models.VendorOrder{}).Select("id"), q)
	return tx.Where("order_id IN (?)", ids)
}

func (s *DBSource) loadOrders(ctx context.Context, q types.Query) ([]models.VendorOrder, error) {
	query := func() *gorm.DB {
		tx := s.db.WithContext(ctx).
			Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
			Preload("PaymentIntent").
			Preload("PrintJob").
			Preload("Shipment").
			Where("COALESCE(placed_at, created_at) BETWEEN ? AND ?", q.Start, q.End)
		return scopedOrders(tx, q)
	}
	return readPages(ctx, s, "vendor_orders", query, func(o models.VendorOrder) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
}

func (s *DBSource) loadShipments(ctx context.Context, q types.Query) ([]models.Shipment, error) {
	query := func() *gorm.DB {
		tx := s.db.WithContext(ctx).
			Where("COALESCE(shipped_at, ordered_at) BETWEEN ? AND ?", q.Start, q.End)
		return s.scopedByOrder(ctx, tx, q)
	}
	return readPages(ctx, s, "shipments", query, func(sh models.Shipment) pagination.Cursor {
		return pagination.Cursor{CreatedAt: sh.CreatedAt, ID: sh.ID}
	})
}

func (s *DBSource) loadReconciliations(ctx context.Context, q types.Query) ([]models.Reconciliation, error) {
	query := func() *gorm.DB {
		tx := s.db.WithContext(ctx).
			Where("COALESCE(reconciled_at, ordered_at) BETWEEN ? AND ?", q.Start, q.End)
		return s.scopedByOrder(ctx, tx, q)
	}
	return readPages(ctx, s, "reconciliations", query, func(r models.Reconciliation) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})
}

// loadProducts returns the catalog for vendor reports; buyers have no catalog.
func (s *DBSource) loadProducts(ctx context.Context, q types.Query) ([]models.Product, error) {
	if q.Scope == types.ScopeBuyer {
		return nil, nil
	}
	query := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Where("status <> ?", enums.ProductStatusArchived.String())
		if q.Scope == types.ScopeVendor {
			tx = tx.Where("store_id = ?", q.StoreID)
		}
		return tx
	}
	return readPages(ctx, s, "products", query, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
}

// readPages walks a (created_at, id) keyset until the table is exhausted or maxRecords is reached.
// Hitting the cap truncates the batch and logs the resume cursor.
func readPages[T any](ctx context.Context, s *DBSource, table string, query func() *gorm.DB, cursorOf func(T) pagination.Cursor) ([]T, error) {
	var (
		out    []T
		cursor *pagination.Cursor
	)
	for {
		tx := query()
		if cursor != nil {
			clause, args := cursor.After()
			tx = tx.Where(clause, args...)
		}
		var page []T
		if err := tx.Order("created_at ASC, id ASC").Limit(pagination.LimitWithBuffer(s.pageSize)).Find(&page).Error; err != nil {
			return nil, fmt.Errorf("query %s: %w", table, err)
		}
		page, hasMore := pagination.SplitPage(page, s.pageSize)
		out = append(out, page...)

		if s.maxRecords > 0 && len(out) >= s.maxRecords {
			if len(out) > s.maxRecords || hasMore {
				out = out[:s.maxRecords]
				next := cursorOf(out[len(out)-1])
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
					"table":         table,
					"max_records":   s.maxRecords,
					"resume_cursor": pagination.EncodeCursor(next),
				}), "record cap reached; batch truncated")
			}
			return out, nil
		}
		if !hasMore || len(page) == 0 {
			return out, nil
		}
		next := cursorOf(page[len(page)-1])
		cursor = &next
	}
}

func orderRecord(o models.VendorOrder) types.RawOrder {
	placed := o.PlacedAt
	if placed == nil {
		placed = &o.CreatedAt
	}
	record := types.RawOrder{
		ID:        o.ID.String(),
		StoreID:   o.VendorStoreID.String(),
		OrderedAt: formatTime(placed),
		Status:    o.Status,
		Total:     cents(o.TotalCents),
	}
	for _, item := range o.Items {
		record.Items = append(record.Items, types.RawLineItem{
			ID:    productKey(item.ProductID),
			Name:  item.Name,
			Price: cents(item.UnitPriceCents),
		})
	}
	if o.PaymentIntent != nil {
		record.Payment = &types.RawPayment{
			Method: o.PaymentIntent.Method,
			Amount: cents(o.PaymentIntent.AmountCents),
			PaidAt: formatTime(o.PaymentIntent.PaidAt),
		}
	}
	if o.PrintJob != nil {
		record.PrintJob = &types.RawPrintJob{Status: o.PrintJob.Status}
	}
	if o.Shipment != nil {
		shipment := shipmentRecord(*o.Shipment)
		record.Shipment = &shipment
	}
	return record
}

func shipmentRecord(s models.Shipment) types.RawShipment {
	return types.RawShipment{
		ID:         s.ID.String(),
		OrderID:    s.OrderID.String(),
		OrderDate:  formatTime(s.OrderedAt),
		ShippedAt:  formatTime(s.ShippedAt),
		Method:     derefString(s.Method),
		TrackingID: derefString(s.TrackingID),
	}
}

func reconciliationRecord(r models.Reconciliation) types.RawReconciliation {
	return types.RawReconciliation{
		ID:           r.ID.String(),
		OrderID:      r.OrderID.String(),
		OrderDate:    formatTime(r.OrderedAt),
		ReconciledAt: formatTime(r.ReconciledAt),
		Status:       r.Status,
		Amount:       cents(r.AmountCents),
	}
}

func productRecord(p models.Product) types.RawProduct {
	return types.RawProduct{
		ID:      p.ID.String(),
		Title:   p.Title,
		Status:  p.Status,
		Price:   cents(p.PriceCents),
		Channel: derefString(p.Channel),
	}
}

func cents(value *int64) types.Number {
	if value == nil {
		return types.Number{}
	}
	return types.NumberFromCents(*value)
}

func productKey(id *uuid.UUID) string {
	if id == nil || *id == uuid.Nil {
		return ""
	}
	return id.String()
}
