package ringbuf

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports ring activity as Prometheus metrics. One Metrics may be
// shared by several rings; the occupied gauge then holds their sum.
type Metrics struct {
	pushed   prometheus.Counter
	popped   prometheus.Counter
	rejected prometheus.Counter
	occupied prometheus.Gauge
}

// NewMetrics creates ring metrics labelled with name and registers them
// with reg.
func NewMetrics(reg prometheus.Registerer, name string) (*Metrics, error) {
	labels := prometheus.Labels{"ring": name}
	m := &Metrics{
		pushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "xjrelay",
			Subsystem:   "ring",
			Name:        "pushed_total",
			ConstLabels: labels,
			Help:        "Total number of elements published by the producer",
		}),
		popped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "xjrelay",
			Subsystem:   "ring",
			Name:        "popped_total",
			ConstLabels: labels,
			Help:        "Total number of elements released by the consumer",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "xjrelay",
			Subsystem:   "ring",
			Name:        "rejected_total",
			ConstLabels: labels,
			Help:        "Total number of pushes rejected because the ring was full",
		}),
		occupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "xjrelay",
			Subsystem:   "ring",
			Name:        "occupied",
			ConstLabels: labels,
			Help:        "Number of occupied slots across every ring reporting here",
		}),
	}
	for _, c := range []prometheus.Collector{m.pushed, m.popped, m.rejected, m.occupied} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) HeadAdvanced(n, _ int) {
	m.pushed.Add(float64(n))
	m.occupied.Add(float64(n))
}

func (m *Metrics) TailAdvanced(n, _ int) {
	m.popped.Add(float64(n))
	m.occupied.Sub(float64(n))
}

func (m *Metrics) PushRejected() {
	m.rejected.Inc()
}

var _ Hooks = (*Metrics)(nil)
