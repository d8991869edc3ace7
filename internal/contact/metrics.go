package contact

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts settled submissions by outcome. A nil *Metrics is a no-op.
type Metrics struct {
	submissions *prometheus.CounterVec
}

// NewMetrics registers the contact counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Subsystem: "contact_form",
			Name:      "submissions_total",
			Help:      "Contact form submissions by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		if err := reg.Register(m.submissions); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Submissions exposes the underlying counter, mainly for tests.
func (m *Metrics) Submissions() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.submissions
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}
