package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// JobMetrics tracks scheduled job runs, their latency and the last good run.
type JobMetrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	skipped     prometheus.Counter
}

// NewJobMetrics registers the job metrics on reg. A nil registerer yields a no-op recorder.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	m := &JobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ops_job_runs_total",
			Help: "Scheduled job executions by outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ops_job_duration_seconds",
			Help:    "Duration of scheduled jobs in seconds.",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ops_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per job.",
		}, []string{"job"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ops_job_cycles_skipped_total",
			Help: "Cycles skipped because another replica held the lock.",
		}),
	}
	reg.MustRegister(m.runs, m.duration, m.lastSuccess, m.skipped)
	return m
}

// Record stores the outcome of one job run finished at now.
func (m *JobMetrics) Record(job string, duration time.Duration, err error, now time.Time) {
	if m == nil || m.runs == nil {
		return
	}
	job = normalizeLabel(job)
	m.duration.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		m.runs.WithLabelValues(job, outcomeFailure).Inc()
		return
	}
	m.runs.WithLabelValues(job, outcomeSuccess).Inc()
	m.lastSuccess.WithLabelValues(job).Set(float64(now.Unix()))
}

func (m *JobMetrics) IncSkipped() {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.Inc()
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
