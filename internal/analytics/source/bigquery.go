package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cloudbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/bigquery"
	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-ops/pkg/errors"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second

	marketplaceEventsSQL = `
SELECT
  event_id,
  event_type,
  occurred_at,
  order_id,
  vendor_store_id,
  buyer_store_id,
  gross_revenue_cents,
  refund_cents,
  items,
  payload
FROM %s
WHERE %s
  AND event_type IN UNNEST(@eventTypes)
  AND occurred_at BETWEEN @start AND @end
ORDER BY occurred_at ASC, event_id ASC
LIMIT @limit
`
)

// MarketplaceEventRow is the slice of the marketplace_events schema the report reads.
type MarketplaceEventRow struct {
	EventID           string                   `bigquery:"event_id"`
	EventType         string                   `bigquery:"event_type"`
	OccurredAt        time.Time                `bigquery:"occurred_at"`
	OrderID           cloudbigquery.NullString `bigquery:"order_id"`
	VendorStoreID     cloudbigquery.NullString `bigquery:"vendor_store_id"`
	BuyerStoreID      cloudbigquery.NullString `bigquery:"buyer_store_id"`
	GrossRevenueCents cloudbigquery.NullInt64  `bigquery:"gross_revenue_cents"`
	RefundCents       cloudbigquery.NullInt64  `bigquery:"refund_cents"`
	Items             cloudbigquery.NullJSON   `bigquery:"items"`
	Payload           cloudbigquery.NullJSON   `bigquery:"payload"`
}

// RetryPolicy controls how many times a failed query is retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

type rowIterator interface {
	Next(dst any) error
}

type queryFunc func(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) (rowIterator, error)

// BigQuerySource rebuilds the record batch from the append-only marketplace event log.
type BigQuerySource struct {
	query      queryFunc
	tableRef   string
	maxRecords int
	retry      RetryPolicy
	logg       *logger.Logger
}

// NewBigQuerySource builds a source over project.dataset.table.
func NewBigQuerySource(client *bigquery.Client, project, dataset, table string, maxRecords int, retry RetryPolicy, logg *logger.Logger) (*BigQuerySource, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	run := func(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) (rowIterator, error) {
		return client.Query(ctx, sql, params)
	}
	return newBigQuerySource(run, project, dataset, table, maxRecords, retry, logg)
}

func newBigQuerySource(run queryFunc, project, dataset, table string, maxRecords int, retry RetryPolicy, logg *logger.Logger) (*BigQuerySource, error) {
	project, dataset, table = strings.TrimSpace(project), strings.TrimSpace(dataset), strings.TrimSpace(table)
	if project == "" || dataset == "" || table == "" {
		return nil, errors.New("project, dataset, and table are required")
	}
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = defaultInitialBackoff
	}
	if retry.MaximumBackoff < retry.InitialBackoff {
		retry.MaximumBackoff = max(defaultMaximumBackoff, retry.InitialBackoff)
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &BigQuerySource{
		query:      run,
		tableRef:   fmt.Sprintf("`%s.%s.%s`", project, dataset, table),
		maxRecords: maxRecords,
		retry:      retry,
		logg:       logg,
	}, nil
}

// Load reads the events of the window and folds them into one record per order.
func (s *BigQuerySource) Load(ctx context.Context, q types.Query) (types.Batch, error) {
	if err := validateQuery(q); err != nil {
		return types.Batch{}, err
	}
	sql := fmt.Sprintf(marketplaceEventsSQL, s.tableRef, storeClause(q.Scope))
	params := []cloudbigquery.QueryParameter{
		{Name: "storeID", Value: q.StoreID},
		{Name: "eventTypes", Value: enums.AnalyticsEventTypes()},
		{Name: "start", Value: q.Start},
		{Name: "end", Value: q.End},
		{Name: "limit", Value: s.limit()},
	}

	rows, err := s.readWithRetry(ctx, sql, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return types.Batch{}, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "load marketplace events")
		}
		return types.Batch{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load marketplace events")
	}
	if s.maxRecords > 0 && len(rows) >= s.maxRecords {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"source":      "bigquery",
			"max_records": s.maxRecords,
		}), "record cap reached; batch truncated")
	}
	return foldEvents(rows), nil
}

func (s *BigQuerySource) limit() int64 {
	if s.maxRecords <= 0 {
		return 1 << 31
	}
	return int64(s.maxRecords)
}

func storeClause(scope types.Scope) string {
	switch scope {
	case types.ScopeVendor:
		return "vendor_store_id = @storeID"
	case types.ScopeBuyer:
		return "buyer_store_id = @storeID"
	default:
		return "TRUE"
	}
}

func (s *BigQuerySource) readWithRetry(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) ([]MarketplaceEventRow, error) {
	attempts := 0
	backoff := s.retry.InitialBackoff
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := s.read(ctx, sql, params)
		if err == nil {
			return rows, nil
		}

		attempts++
		if attempts >= s.retry.MaxAttempts || !isRetryableBigQueryError(err) {
			return nil, err
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"attempt": attempts,
			"error":   err.Error(),
		}), "retrying marketplace events query")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, s.retry.MaximumBackoff)
	}
}

func (s *BigQuerySource) read(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) ([]MarketplaceEventRow, error) {
	iter, err := s.query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("query marketplace events: %w", err)
	}
	var rows []MarketplaceEventRow
	for {
		var row MarketplaceEventRow
		if err := iter.Next(&row); err != nil {
			if errors.Is(err, iterator.Done) {
				return rows, nil
			}
			return nil, fmt.Errorf("reading marketplace event row: %w", err)
		}
		rows = append(rows, row)
	}
}
