package server

import "github.com/prometheus/client_golang/prometheus"

const (
	resultStored      = "stored"
	resultInvalid     = "invalid"
	resultRateLimited = "rate_limited"
	resultError       = "error"
)

type serverMetrics struct {
	received *prometheus.CounterVec
}

func newServerMetrics(reg prometheus.Registerer, limiter *rateLimiter) (*serverMetrics, error) {
	m := &serverMetrics{
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Subsystem: "contact",
			Name:      "received_total",
			Help:      "Contact submissions handled by the API, by result.",
		}, []string{"result"}),
	}
	tracked := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "folio",
		Subsystem: "contact",
		Name:      "limiter_clients",
		Help:      "Client addresses currently tracked by the contact rate limiter.",
	}, func() float64 { return float64(limiter.tracked()) })
	for _, c := range []prometheus.Collector{m.received, tracked} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *serverMetrics) observe(result string) {
	m.received.WithLabelValues(result).Inc()
}
