package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	pkgerrors "github.com/angelmondragon/packfinderz-ops/pkg/errors"
	"github.com/angelmondragon/packfinderz-ops/pkg/metrics"
)

type fakeSource struct {
	lastQuery types.Query
	batch     types.Batch
	err       error
	deadline  bool
}

func (f *fakeSource) Load(ctx context.Context, q types.Query) (types.Batch, error) {
	f.lastQuery = q
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return types.Batch{}, f.err
	}
	return f.batch, nil
}

func reportConfig() config.ReportConfig {
	return config.ReportConfig{
		TrendDays:       14,
		SLATargetHours:  72,
		StaleAfterDays:  45,
		DefaultWindow:   60,
		MaxWindowDays:   90,
		PayoutLagWeeks:  1,
		ListingFloor:    40,
		ComplianceFloor: 20,
	}
}

func newTestService(t *testing.T, src *fakeSource) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Source:        src,
		Report:        reportConfig(),
		SourceTimeout: time.Second,
		Metrics:       metrics.NewReportMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func ordersBatch(end time.Time) types.Batch {
	day := func(n int) *string {
		v := end.AddDate(0, 0, -n).Format(time.RFC3339)
		return &v
	}
	return types.Batch{Orders: []types.RawOrder{
		{ID: "o1", OrderedAt: day(1), Status: "delivered", Total: types.NumberFromFloat(10), Payment: &types.RawPayment{Method: "card"}},
		{ID: "o2", OrderedAt: day(2), Status: "delivered", Total: types.NumberFromFloat(20), Payment: &types.RawPayment{Method: "card"}},
		{ID: "o3", OrderedAt: day(3), Status: "bogus", Total: types.NumberFromFloat(30)},
	}}
}

func TestOperationsBuildsReport(t *testing.T) {
	end := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{batch: ordersBatch(end)}
	svc := newTestService(t, src)

	req := types.ReportRequest{
		StoreID:   "store-1",
		Scope:     types.ScopeVendor,
		Start:     end.AddDate(0, 0, -30),
		End:       end,
		TrendDays: 7,
	}
	report, err := svc.Operations(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.lastQuery.StoreID != "store-1" || src.lastQuery.Scope != types.ScopeVendor {
		t.Fatalf("unexpected query forwarded: %+v", src.lastQuery)
	}
	if !src.lastQuery.Start.Equal(req.Start) || !src.lastQuery.End.Equal(req.End) {
		t.Fatalf("unexpected query window: %v - %v", src.lastQuery.Start, src.lastQuery.End)
	}
	if !src.deadline {
		t.Fatal("expected the source call to carry a deadline")
	}
	if report.SalesOverview.TotalOrders != 3 || report.SalesOverview.AttachedOrders != 2 {
		t.Fatalf("unexpected overview: %+v", report.SalesOverview)
	}
	if report.SalesOverview.AveragePrice == nil || *report.SalesOverview.AveragePrice != 20 {
		t.Fatalf("expected average price 20, got %v", report.SalesOverview.AveragePrice)
	}
	if len(report.Trend.Points) != 7 {
		t.Fatalf("expected trend override of 7 days, got %d", len(report.Trend.Points))
	}
	if report.Window.SLATargetHours != 72 {
		t.Fatalf("expected configured sla target, got %d", report.Window.SLATargetHours)
	}
	if !report.Window.AsOf.Equal(end) {
		t.Fatalf("expected report anchored at window end, got %v", report.Window.AsOf)
	}
	if report.Diagnostics.Anomalies["order.status"] != 1 {
		t.Fatalf("expected one status anomaly, got %v", report.Diagnostics.Anomalies)
	}
}

func TestOperationsValidatesRequest(t *testing.T) {
	end := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, &fakeSource{})

	cases := map[string]types.ReportRequest{
		"scope":         {StoreID: "s", Scope: "owner", Start: end.AddDate(0, 0, -7), End: end},
		"store":         {Scope: types.ScopeVendor, Start: end.AddDate(0, 0, -7), End: end},
		"missing times": {StoreID: "s", Scope: types.ScopeVendor},
		"inverted":      {StoreID: "s", Scope: types.ScopeVendor, Start: end, End: end.AddDate(0, 0, -1)},
		"too wide":      {StoreID: "s", Scope: types.ScopeVendor, Start: end.AddDate(0, 0, -120), End: end},
		"trend":         {StoreID: "s", Scope: types.ScopeVendor, Start: end.AddDate(0, 0, -7), End: end, TrendDays: 3},
		"sla":           {StoreID: "s", Scope: types.ScopeVendor, Start: end.AddDate(0, 0, -7), End: end, SLATargetHours: 1000},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Operations(context.Background(), req)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestOperationsAdminScopeNeedsNoStore(t *testing.T) {
	end := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, &fakeSource{})
	report, err := svc.Operations(context.Background(), types.ReportRequest{
		Scope: types.ScopeAdmin,
		Start: end.AddDate(0, 0, -7),
		End:   end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SalesOverview.AveragePrice != nil {
		t.Fatal("expected null average for an empty batch")
	}
}

func TestOperationsWrapsSourceErrors(t *testing.T) {
	end := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	req := types.ReportRequest{StoreID: "s", Scope: types.ScopeVendor, Start: end.AddDate(0, 0, -7), End: end}

	svc := newTestService(t, &fakeSource{err: errors.New("connection refused")})
	if _, err := svc.Operations(context.Background(), req); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}

	timeout := pkgerrors.Wrap(pkgerrors.CodeTimeout, context.DeadlineExceeded, "load orders")
	svc = newTestService(t, &fakeSource{err: timeout})
	if _, err := svc.Operations(context.Background(), req); !pkgerrors.IsCode(err, pkgerrors.CodeTimeout) {
		t.Fatalf("expected typed source error to pass through, got %v", err)
	}
}

func TestNewServiceRequiresSource(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without a source")
	}
}
