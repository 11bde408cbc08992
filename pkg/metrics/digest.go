package metrics

import "github.com/prometheus/client_golang/prometheus"

// DigestMetrics exports the per-store headline numbers of the operations digest.
type DigestMetrics struct {
	actionListings *prometheus.GaugeVec
	slaOnTime      *prometheus.GaugeVec
	gmvChange      *prometheus.GaugeVec
}

// DigestSnapshot is the subset of a report the digest publishes.
type DigestSnapshot struct {
	StoreID        string
	ActionListings int
	// SLAOnTimeRatio is nil when no shipment had a measurable lead time.
	SLAOnTimeRatio *float64
	GMVChange      float64
}

// NewDigestMetrics registers the digest gauges on the provided registerer.
func NewDigestMetrics(reg prometheus.Registerer) *DigestMetrics {
	if reg == nil {
		return &DigestMetrics{}
	}
	actionListings := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ops_listing_action_total",
		Help: "Listings classified as needing action in the latest digest.",
	}, []string{"store"})
	slaOnTime := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ops_sla_on_time_ratio",
		Help: "Share of measurable shipments dispatched within the SLA target.",
	}, []string{"store"})
	gmvChange := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ops_gmv_change_ratio",
		Help: "Period-over-period GMV change of the trend window.",
	}, []string{"store"})
	reg.MustRegister(actionListings, slaOnTime, gmvChange)
	return &DigestMetrics{
		actionListings: actionListings,
		slaOnTime:      slaOnTime,
		gmvChange:      gmvChange,
	}
}

// Publish updates the gauges for one store.
func (d *DigestMetrics) Publish(snapshot DigestSnapshot) {
	if d == nil || d.actionListings == nil {
		return
	}
	store := normalizeLabel(snapshot.StoreID)
	d.actionListings.WithLabelValues(store).Set(float64(snapshot.ActionListings))
	d.gmvChange.WithLabelValues(store).Set(snapshot.GMVChange)
	if snapshot.SLAOnTimeRatio == nil {
		d.slaOnTime.DeleteLabelValues(store)
		return
	}
	d.slaOnTime.WithLabelValues(store).Set(*snapshot.SLAOnTimeRatio)
}
