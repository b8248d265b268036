package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects turn-level counters for the conversation service.
type Metrics struct {
	TurnsTotal   *prometheus.CounterVec
	NodeRuns     *prometheus.CounterVec
	NodeFailures *prometheus.CounterVec
	TurnDuration prometheus.Histogram
}

// NewMetrics creates and registers the conversation metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TurnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpline",
			Name:      "turns_total",
			Help:      "Completed conversation turns by stop reason.",
		}, []string{"stop"}),
		NodeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpline",
			Name:      "node_runs_total",
			Help:      "Node executions by node id.",
		}, []string{"node"}),
		NodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpline",
			Name:      "node_failures_total",
			Help:      "Node executions that ended in the error fallback.",
		}, []string{"node"}),
		TurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "helpline",
			Name:      "turn_duration_seconds",
			Help:      "Wall time of a single conversation turn.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.TurnsTotal, m.NodeRuns, m.NodeFailures, m.TurnDuration)
	return m
}
