package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the intake and fan-out flows.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	deliveriesTotal  *prometheus.CounterVec
	deliveryLatency  *prometheus.HistogramVec
}

// NewLeadMetrics creates and registers the lead intake collectors on reg.
func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadintake",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Total lead submissions by result",
		}, []string{"result"}),
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadintake",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Total notification channel deliveries",
		}, []string{"channel", "status"}),
		deliveryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadintake",
			Subsystem: "notify",
			Name:      "delivery_seconds",
			Help:      "Latency of a single channel delivery",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.deliveriesTotal, m.deliveryLatency)
	return m
}

// ObserveSubmission counts one intake attempt. result is one of
// accepted, invalid or failed.
func (m *LeadMetrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(result).Inc()
}

// ObserveDelivery records one channel delivery and its latency.
func (m *LeadMetrics) ObserveDelivery(channel, status string, seconds float64) {
	if m == nil {
		return
	}
	m.deliveriesTotal.WithLabelValues(channel, status).Inc()
	m.deliveryLatency.WithLabelValues(channel).Observe(seconds)
}
