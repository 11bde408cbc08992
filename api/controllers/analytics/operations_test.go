package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/packfinderz-ops/api/middleware"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	pkgerrors "github.com/angelmondragon/packfinderz-ops/pkg/errors"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
)

const testStoreID = "6f1c9a52-3c1e-4d8e-9a57-2f4f1c0b8a11"

var testReportConfig = config.ReportConfig{DefaultWindow: 60, MaxWindowDays: 90}

func withStore(req *http.Request, storeID, storeType string) *http.Request {
	ctx := req.Context()
	if storeID != "" {
		ctx = middleware.WithStoreID(ctx, storeID)
	}
	if storeType != "" {
		ctx = middleware.WithStoreType(ctx, storeType)
	}
	return req.WithContext(ctx)
}

func freezeNow(t *testing.T, now time.Time) {
	t.Helper()
	timeNowUTC = func() time.Time { return now }
	t.Cleanup(func() { timeNowUTC = func() time.Time { return time.Now().UTC() } })
}

func TestOperationsReportRequiresStoreContext(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := OperationsReport(stub, testReportConfig, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/operations", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when store context missing, got %d", resp.Code)
	}
	if stub.called() {
		t.Fatal("service should not be invoked when context missing")
	}
}

func TestOperationsReportRejectsUnknownStoreType(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := OperationsReport(stub, testReportConfig, logger.Nop())

	req := withStore(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/operations", nil), testStoreID, "agent")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown store type, got %d", resp.Code)
	}
}

func TestOperationsReportUsesPreset(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	freezeNow(t, now)

	gmv := 60.0
	stub := &testAnalyticsService{
		response: &types.Report{
			SalesOverview: types.SalesOverview{TotalOrders: 3, GMV: gmv},
		},
	}
	handler := OperationsReport(stub, testReportConfig, logger.Nop())

	req := withStore(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/operations?preset=7d&trend_days=10&sla_target_hours=48", nil), testStoreID, "buyer")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if stub.period() != 7*24*time.Hour {
		t.Fatalf("expected 7d range, got %v", stub.period())
	}
	if !stub.last.End.Equal(now) {
		t.Fatalf("expected range to end now, got %v", stub.last.End)
	}
	if stub.last.Scope != types.ScopeBuyer {
		t.Fatalf("expected buyer scope, got %s", stub.last.Scope)
	}
	if stub.last.TrendDays != 10 || stub.last.SLATargetHours != 48 {
		t.Fatalf("overrides not forwarded: %+v", stub.last)
	}

	var envelope struct {
		Data types.Report `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.SalesOverview.TotalOrders != 3 || envelope.Data.SalesOverview.GMV != gmv {
		t.Fatalf("unexpected overview: %+v", envelope.Data.SalesOverview)
	}
}

func TestOperationsReportDefaultsToConfiguredWindow(t *testing.T) {
	freezeNow(t, time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))

	stub := &testAnalyticsService{}
	handler := OperationsReport(stub, testReportConfig, logger.Nop())

	req := withStore(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/operations", nil), testStoreID, "vendor")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if stub.period() != 60*24*time.Hour {
		t.Fatalf("expected 60d default range, got %v", stub.period())
	}
	if stub.last.Scope != types.ScopeVendor {
		t.Fatalf("expected vendor scope, got %s", stub.last.Scope)
	}
}

func TestOperationsReportExplicitRange(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := OperationsReport(stub, testReportConfig, logger.Nop())

	req := withStore(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/operations?from=2025-01-01T00:00:00Z&to=2025-01-31T00:00:00%2B02:00", nil), testStoreID, "vendor")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	wantEnd := time.Date(2025, 1, 30, 22, 0, 0, 0, time.UTC)
	if !stub.last.End.Equal(wantEnd) || stub.last.End.Location() != time.UTC {
		t.Fatalf("expected end normalized to UTC %v, got %v", wantEnd, stub.last.End)
	}
}

func TestOperationsReportAdminScope(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := OperationsReport(stub, testReportConfig, logger.Nop())

	req := withStore(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/operations?preset=30d", nil), "", middleware.StoreTypeAdmin)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if stub.last.Scope != types.ScopeAdmin || stub.last.StoreID != "" {
		t.Fatalf("expected unscoped admin request, got %+v", stub.last)
	}
}

func TestOperationsReportValidatesQuery(t *testing.T) {
	cases := map[string]string{
		"unknown preset":        "preset=14d",
		"from without to":       "from=2025-01-01T00:00:00Z",
		"bad timestamp":         "from=yesterday&to=2025-01-01T00:00:00Z",
		"reversed range":        "from=2025-02-01T00:00:00Z&to=2025-01-01T00:00:00Z",
		"trend days too small":  "trend_days=3",
		"trend days too large":  "trend_days=120",
		"trend days not number": "trend_days=ten",
		"sla target too large":  "sla_target_hours=1000",
	}
	for name, query := range cases {
		t.Run(name, func(t *testing.T) {
			stub := &testAnalyticsService{}
			handler := OperationsReport(stub, testReportConfig, logger.Nop())

			req := withStore(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/operations?"+query, nil), testStoreID, "vendor")
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
			}
			if stub.called() {
				t.Fatal("service should not be invoked for invalid queries")
			}
		})
	}
}

func TestOperationsReportMapsServiceErrors(t *testing.T) {
	stub := &testAnalyticsService{err: pkgerrors.New(pkgerrors.CodeDependency, "load orders")}
	handler := OperationsReport(stub, testReportConfig, logger.Nop())

	req := withStore(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/operations", nil), testStoreID, "vendor")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeDependency) {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}
