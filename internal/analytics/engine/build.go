// Package engine folds one batch of upstream records into an operations report.
//
// Build is a pure function: it performs no I/O, keeps no state between calls and reads
// no clock other than Options.AsOf, so the same batch and options always produce the
// same report. Malformed records degrade to defaults instead of failing the pass.
package engine

import (
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/normalize"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
)

// Record kinds reported in diagnostics.
const (
	KindOrders          = "orders"
	KindLineItems       = "lineItems"
	KindShipments       = "shipments"
	KindReconciliations = "reconciliations"
	KindProducts        = "products"
)

// Build derives the operations report for batch.
func Build(batch types.Batch, opts Options) types.Report {
	opts = opts.withDefaults()
	norm := normalize.New()

	orders := make([]normalize.Order, 0, len(batch.Orders))
	lineItems := 0
	for _, raw := range batch.Orders {
		order := norm.Order(raw)
		lineItems += len(order.Items)
		orders = append(orders, order)
	}
	standalone := make([]normalize.Shipment, 0, len(batch.Shipments))
	for _, raw := range batch.Shipments {
		standalone = append(standalone, norm.Shipment(raw))
	}
	reconciliations := make([]normalize.Reconciliation, 0, len(batch.Reconciliations))
	for _, raw := range batch.Reconciliations {
		reconciliations = append(reconciliations, norm.Reconciliation(raw))
	}
	products := make([]normalize.Product, 0, len(batch.Products))
	for _, raw := range batch.Products {
		products = append(products, norm.Product(raw))
	}

	listings := NewStore(newListingAccumulator)
	channels := NewStore(newChannelAccumulator)
	compliance := NewStore(newComplianceAccumulator)
	for _, order := range orders {
		folds := listingFolds(order)
		keys := make([]string, 0, len(folds))
		for _, f := range folds {
			listings.Upsert(f.key).fold(order, f)
			compliance.Upsert(f.key).fold(order)
			keys = append(keys, f.key)
		}
		channels.Upsert(order.Channel).fold(order, keys)
	}
	for _, product := range products {
		if product.ID == "" {
			continue
		}
		if _, ok := listings.Get(product.ID); !ok && product.Status.Value == enums.ProductStatusArchived {
			continue
		}
		listings.Upsert(product.ID).seedFromCatalog(product)
	}

	finalized := listings.Values()
	for _, listing := range finalized {
		listing.finalize(opts)
	}
	sortListings(finalized)
	assortment := make([]types.ListingRow, 0, len(finalized))
	for _, listing := range finalized {
		assortment = append(assortment, listing.row(opts.Listing))
	}

	overview, gmv := buildSalesOverview(orders)

	channelRows := make([]types.ChannelRow, 0, channels.Len())
	for _, channel := range channels.Values() {
		channelRows = append(channelRows, channel.row(listings, gmv, opts))
	}
	sortChannels(channelRows)

	shipments, duplicates := collectShipments(standalone, orders)
	sla, undatedShipments := buildSLA(shipments, opts)
	settlements, undatedReconciliations := buildSettlements(reconciliations, opts)

	return types.Report{
		Window: types.Window{
			From:           opts.From,
			To:             opts.To,
			AsOf:           opts.AsOf,
			TrendDays:      opts.TrendDays,
			SLATargetHours: opts.SLATargetHours,
			StaleAfterDays: opts.StaleAfterDays,
		},
		SalesOverview:    overview,
		Trend:            buildTrend(orders, opts),
		ChannelBreakdown: channelRows,
		Assortment:       assortment,
		Compliance:       buildCompliance(compliance, listings, opts.Compliance),
		Settlements:      settlements,
		SLA:              sla,
		Diagnostics: types.Diagnostics{
			Records: map[string]int{
				KindOrders:          len(orders),
				KindLineItems:       lineItems,
				KindShipments:       len(shipments),
				KindReconciliations: len(reconciliations),
				KindProducts:        len(products),
			},
			Anomalies:              norm.Anomalies(),
			DuplicateShipments:     duplicates,
			UndatedShipments:       undatedShipments,
			UndatedReconciliations: undatedReconciliations,
		},
	}
}
