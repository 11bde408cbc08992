package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/normalize"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/scoring"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
)

// Listing issue tags.
const (
	IssuePrintFailure        = "print-failure"
	IssueCancellation        = "cancellation"
	IssueAwaitingFulfillment = "awaiting-fulfillment"
	IssueMissingPayment      = "missing-payment"
	IssueRepricing           = "repricing"
)

// ListingAccumulator is the running state of one listing during a pass.
type ListingAccumulator struct {
	Key          string
	Label        string
	Channel      string
	Orders       int
	Pending      int
	Cancelled    int
	FailedPrints int
	GMVShare     decimal.Decimal
	LastOrderAt  normalize.Optional[time.Time]
	Ledger       PriceLedger
	Issues       tagSet
	Catalog      *enums.ProductStatus

	// Status is set by finalize, once, from the final counts.
	Status enums.ListingStatus
}

func newListingAccumulator(key string) *ListingAccumulator {
	return &ListingAccumulator{
		Key:      key,
		GMVShare: decimal.Zero,
		Issues:   tagSet{},
	}
}

// listingFold is the contribution of one order to one listing.
type listingFold struct {
	key    string
	label  string
	prices []decimal.Decimal
	share  decimal.Decimal
}

// SyntheticListingKey is the key of an order folded without line items.
func SyntheticListingKey(orderID, channel string) string {
	return fmt.Sprintf("order:%s:%s", orderID, channel)
}

// listingFolds splits an order into per-listing contributions. Items sharing a key are
// merged so an order counts once per listing, but every known item price is kept.
func listingFolds(order normalize.Order) []listingFold {
	synthetic := SyntheticListingKey(order.ID, order.Channel)
	if len(order.Items) == 0 {
		var prices []decimal.Decimal
		if !order.Total.Defaulted {
			prices = append(prices, order.Total.Value)
		}
		return []listingFold{{
			key:    synthetic,
			label:  fmt.Sprintf("Order %s", order.ID),
			prices: prices,
			share:  order.Total.Value,
		}}
	}

	perItem := order.Total.Value.Div(decimal.NewFromInt(int64(len(order.Items))))
	folds := []listingFold{}
	index := map[string]int{}
	for _, item := range order.Items {
		key, label := itemIdentity(item, synthetic)
		i, ok := index[key]
		if !ok {
			i = len(folds)
			index[key] = i
			folds = append(folds, listingFold{key: key, label: label, share: decimal.Zero})
		}
		folds[i].share = folds[i].share.Add(perItem)
		if item.Price.Valid {
			folds[i].prices = append(folds[i].prices, item.Price.Value)
		}
	}
	return folds
}

func itemIdentity(item normalize.LineItem, fallback string) (key, label string) {
	switch {
	case item.ID != "":
		key = item.ID
	case item.Name != "":
		key = "name:" + strings.ToLower(item.Name)
	default:
		key = fallback
	}
	label = item.Name
	if label == "" {
		label = key
	}
	return key, label
}

func (a *ListingAccumulator) fold(order normalize.Order, f listingFold) {
	if a.Label == "" {
		a.Label = f.label
	}
	newer := order.OrderedAt.Valid && (!a.LastOrderAt.Valid || order.OrderedAt.Value.After(a.LastOrderAt.Value))
	// items after the first share the order's timestamp, so only the first is newer
	for i, price := range f.prices {
		a.Ledger.Observe(price, newer && i == 0)
	}
	if newer || a.Channel == "" {
		a.Channel = order.Channel
	}
	a.LastOrderAt = later(a.LastOrderAt, order.OrderedAt)

	a.Orders++
	if !order.Cancelled() {
		a.GMVShare = a.GMVShare.Add(f.share)
	}
	for _, issue := range orderIssues(order) {
		a.Issues.add(issue)
	}
	switch order.Status.Value {
	case enums.OrderStatusPending:
		a.Pending++
	case enums.OrderStatusCancelled:
		a.Cancelled++
	}
	if order.PrintJob.Valid && order.PrintJob.Value.Failed() {
		a.FailedPrints++
	}
}

// missingPayment is true for a live order without a payment reference.
func missingPayment(order normalize.Order) bool {
	return !order.Attached() && !order.Cancelled()
}

func orderIssues(order normalize.Order) []string {
	issues := []string{}
	if order.PrintJob.Valid && order.PrintJob.Value.Failed() {
		issues = append(issues, IssuePrintFailure)
	}
	switch order.Status.Value {
	case enums.OrderStatusCancelled:
		issues = append(issues, IssueCancellation)
	case enums.OrderStatusPending:
		issues = append(issues, IssueAwaitingFulfillment)
	}
	if missingPayment(order) {
		issues = append(issues, IssueMissingPayment)
	}
	return issues
}

// seedFromCatalog merges a catalog product into the listing keyed by its id.
func (a *ListingAccumulator) seedFromCatalog(product normalize.Product) {
	status := product.Status.Value
	a.Catalog = &status
	if a.Label == "" || a.Label == a.Key {
		if product.Title != "" {
			a.Label = product.Title
		}
	}
	if a.Label == "" {
		a.Label = a.Key
	}
	if a.Channel == "" {
		a.Channel = product.Channel
	}
	if !a.Ledger.Latest.Valid && product.Price.Valid {
		a.Ledger.Observe(product.Price.Value, false)
	}
}

func (a *ListingAccumulator) finalize(opts Options) {
	a.Status = scoring.ListingStatus(scoring.ListingSignals{
		Orders:       a.Orders,
		Pending:      a.Pending,
		Cancelled:    a.Cancelled,
		FailedPrints: a.FailedPrints,
		LastOrderAt:  timePtr(a.LastOrderAt),
		Catalog:      a.Catalog,
	}, opts.AsOf, opts.staleAfter())
	if scoring.RepricingActive(a.Ledger.Band()) {
		a.Issues.add(IssueRepricing)
	}
}

func (a *ListingAccumulator) row(policy scoring.ListingPolicy) types.ListingRow {
	band := a.Ledger.Band()
	score := policy.Score(scoring.Counts{
		FailedPrints:  a.FailedPrints,
		Cancellations: a.Cancelled,
		PendingOrders: a.Pending,
	}, a.Status)
	return types.ListingRow{
		Key:             a.Key,
		Label:           a.Label,
		Channel:         a.Channel,
		Status:          a.Status.String(),
		Orders:          a.Orders,
		PendingOrders:   a.Pending,
		CancelledOrders: a.Cancelled,
		FailedPrints:    a.FailedPrints,
		GMVShare:        money(a.GMVShare),
		LastOrderAt:     timePtr(a.LastOrderAt),
		Price:           a.Ledger.view(),
		RepricingActive: scoring.RepricingActive(band),
		PricingRule:     scoring.PricingRule(band),
		Score:           score,
		Flagged:         policy.Flagged(score),
		Issues:          a.Issues.sorted(),
	}
}

// sortListings orders by status rank, then most recent order first (unknown last), then key.
func sortListings(listings []*ListingAccumulator) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if ra, rb := scoring.StatusRank(a.Status), scoring.StatusRank(b.Status); ra != rb {
			return ra < rb
		}
		switch {
		case a.LastOrderAt.Valid && b.LastOrderAt.Valid:
			if !a.LastOrderAt.Value.Equal(b.LastOrderAt.Value) {
				return a.LastOrderAt.Value.After(b.LastOrderAt.Value)
			}
		case a.LastOrderAt.Valid != b.LastOrderAt.Valid:
			return a.LastOrderAt.Valid
		}
		return a.Key < b.Key
	})
}
