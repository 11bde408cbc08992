package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics instruments operations report builds.
type ReportMetrics struct {
	buildDuration *prometheus.HistogramVec
	records       *prometheus.CounterVec
	anomalies     *prometheus.CounterVec
}

// NewReportMetrics registers the report metrics on the provided registerer.
func NewReportMetrics(reg prometheus.Registerer) *ReportMetrics {
	if reg == nil {
		return &ReportMetrics{}
	}
	buildDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ops_report_build_seconds",
		Help:    "Time spent loading and aggregating an operations report.",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ops_records_processed_total",
		Help: "Raw records folded into operations reports, by kind.",
	}, []string{"kind"})
	anomalies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ops_normalization_anomalies_total",
		Help: "Fields replaced by a default or dropped during normalization, by field.",
	}, []string{"field"})
	reg.MustRegister(buildDuration, records, anomalies)
	return &ReportMetrics{
		buildDuration: buildDuration,
		records:       records,
		anomalies:     anomalies,
	}
}

// ObserveBuild records the wall time of one report build.
func (r *ReportMetrics) ObserveBuild(scope string, duration time.Duration) {
	if r == nil || r.buildDuration == nil {
		return
	}
	r.buildDuration.WithLabelValues(normalizeLabel(scope)).Observe(duration.Seconds())
}

// AddRecords increments the processed counter for a record kind.
func (r *ReportMetrics) AddRecords(kind string, count int) {
	if r == nil || r.records == nil || count <= 0 {
		return
	}
	r.records.WithLabelValues(normalizeLabel(kind)).Add(float64(count))
}

// AddAnomalies increments the anomaly counter for each field in the map.
func (r *ReportMetrics) AddAnomalies(byField map[string]int) {
	if r == nil || r.anomalies == nil {
		return
	}
	for field, count := range byField {
		if count <= 0 {
			continue
		}
		r.anomalies.WithLabelValues(normalizeLabel(field)).Add(float64(count))
	}
}
