package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records job outcomes.
type Metrics struct {
	jobs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	queue    prometheus.GaugeFunc
}

// NewMetrics registers the pipeline collectors on reg. depth reports the
// current queue depth.
func NewMetrics(reg prometheus.Registerer, depth func() int) *Metrics {
	m := &Metrics{
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsite",
			Name:      "jobs_total",
			Help:      "Hook jobs processed, by kind and terminal status.",
		}, []string{"kind", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docsite",
			Name:      "job_duration_seconds",
			Help:      "Time spent running hook jobs.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"kind"}),
		queue: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "docsite",
			Name:      "queue_depth",
			Help:      "Jobs waiting for the worker.",
		}, func() float64 { return float64(depth()) }),
	}
	reg.MustRegister(m.jobs, m.duration, m.queue)
	return m
}

func (m *Metrics) observe(snap JobSnapshot, took time.Duration) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(string(snap.Kind), string(snap.Status)).Inc()
	m.duration.WithLabelValues(string(snap.Kind)).Observe(took.Seconds())
}
