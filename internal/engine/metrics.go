package engine

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the engine's optional Prometheus instrumentation.
// Attaching it is additive observability, not a spec requirement --
// an Engine with metrics == nil behaves identically.
type metrics struct {
	ordersAccepted prometheus.Counter
	ordersRejected prometheus.Counter
	matchCycles    prometheus.Counter
	fillsEmitted   prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		ordersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchengine",
			Name:      "orders_accepted_total",
			Help:      "Orders admitted to the book.",
		}),
		ordersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchengine",
			Name:      "orders_rejected_total",
			Help:      "Orders rejected for failing validation.",
		}),
		matchCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchengine",
			Name:      "match_cycles_total",
			Help:      "Match cycles run against the book.",
		}),
		fillsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchengine",
			Name:      "fills_emitted_total",
			Help:      "Client and exchange fills emitted across all match cycles.",
		}),
	}
	reg.MustRegister(m.ordersAccepted, m.ordersRejected, m.matchCycles, m.fillsEmitted)
	return m
}
