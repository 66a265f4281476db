package experiment

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes run progress to Prometheus. A nil *Metrics records nothing.
type Metrics struct {
	keys       *prometheus.CounterVec
	plaintexts *prometheus.CounterVec
	workers    prometheus.Gauge
}

// NewMetrics creates the experiment collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		keys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linc_keys_evaluated_total",
			Help: "Number of keys whose correlation has been recorded.",
		}, []string{"strategy"}),
		plaintexts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linc_plaintexts_encrypted_total",
			Help: "Number of plaintexts encrypted.",
		}, []string{"strategy"}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "linc_workers_active",
			Help: "Number of workers currently sampling keys.",
		}),
	}
	reg.MustRegister(m.keys, m.plaintexts, m.workers)
	return m
}

func (m *Metrics) keyDone(strategy string, plaintexts int) {
	if m == nil {
		return
	}
	m.keys.WithLabelValues(strategy).Inc()
	m.plaintexts.WithLabelValues(strategy).Add(float64(plaintexts))
}

func (m *Metrics) workerStarted() {
	if m != nil {
		m.workers.Inc()
	}
}

func (m *Metrics) workerStopped() {
	if m != nil {
		m.workers.Dec()
	}
}
