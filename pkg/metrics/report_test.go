package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestReportMetricsCountsRecordsAndAnomalies(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReportMetrics(reg)
	m.ObserveBuild("vendor", 40*time.Millisecond)
	m.AddRecords("orders", 3)
	m.AddRecords("orders", 2)
	m.AddRecords("shipments", 0)
	m.AddAnomalies(map[string]int{"order.status": 2, "order.total": 0})

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "ops_records_processed_total", "kind", "orders"); err != nil {
		t.Fatalf("fetch records: %v", err)
	} else if got != 5 {
		t.Fatalf("expected 5 orders, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "ops_records_processed_total", "kind", "shipments"); err == nil {
		t.Fatal("zero counts should not create a series")
	}
	if got, err := fetchCounterValue(mfs, "ops_normalization_anomalies_total", "field", "order.status"); err != nil {
		t.Fatalf("fetch anomalies: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 anomalies, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "ops_report_build_seconds", "scope", "vendor"); err != nil {
		t.Fatalf("fetch build duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestDigestMetricsPublish(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDigestMetrics(reg)
	ratio := 0.75
	m.Publish(DigestSnapshot{StoreID: "store-a", ActionListings: 2, SLAOnTimeRatio: &ratio, GMVChange: -0.5})
	m.Publish(DigestSnapshot{StoreID: "store-b", ActionListings: 0})

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchGaugeValue(mfs, "ops_listing_action_total", "store", "store-a"); err != nil || got != 2 {
		t.Fatalf("expected 2 action listings, got %f err=%v", got, err)
	}
	if got, err := fetchGaugeValue(mfs, "ops_sla_on_time_ratio", "store", "store-a"); err != nil || got != 0.75 {
		t.Fatalf("expected on-time 0.75, got %f err=%v", got, err)
	}
	if _, err := fetchGaugeValue(mfs, "ops_sla_on_time_ratio", "store", "store-b"); err == nil {
		t.Fatal("unknown ratio should not export a series")
	}
	if got, err := fetchGaugeValue(mfs, "ops_gmv_change_ratio", "store", "store-a"); err != nil || got != -0.5 {
		t.Fatalf("expected gmv change -0.5, got %f err=%v", got, err)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewReportMetrics(nil).AddRecords("orders", 1)
	NewDigestMetrics(nil).Publish(DigestSnapshot{StoreID: "x"})
	var m *ReportMetrics
	m.ObserveBuild("vendor", time.Second)
}
