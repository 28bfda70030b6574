package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache outcomes.
type Metrics struct {
	Hits          prometheus.Counter
	Misses        prometheus.Counter
	Writes        prometheus.Counter
	WriteFailures prometheus.Counter
}

// NewMetrics registers the counters with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "container", Subsystem: "definition_cache", Name: "hits_total",
			Help: "Container definitions served from the cache.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "container", Subsystem: "definition_cache", Name: "misses_total",
			Help: "Container definitions analyzed because the cache had no usable entry.",
		}),
		Writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "container", Subsystem: "definition_cache", Name: "writes_total",
			Help: "Container definitions written to the cache.",
		}),
		WriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "container", Subsystem: "definition_cache", Name: "write_failures_total",
			Help: "Failed cache writes.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.Writes, m.WriteFailures)
	}
	return m
}
