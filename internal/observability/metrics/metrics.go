package metrics

import "github.com/prometheus/client_golang/prometheus"

// SubmissionMetrics exposes counters for the lead capture flow.
type SubmissionMetrics struct {
	submissionsTotal *prometheus.CounterVec
	rateLimitedTotal prometheus.Counter
}

func NewSubmissionMetrics(reg prometheus.Registerer) *SubmissionMetrics {
	m := &SubmissionMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taxcalc",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total form submissions by outcome",
		}, []string{"outcome"}),
		rateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taxcalc",
			Subsystem: "leads",
			Name:      "rate_limited_total",
			Help:      "Total submissions rejected by the rate limiter",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.rateLimitedTotal)
	return m
}

// ObserveSubmission records a processed submission. Outcome is one of
// success, invalid, or downstream_failure.
func (m *SubmissionMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRateLimited records a throttled submission.
func (m *SubmissionMetrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimitedTotal.Inc()
}
