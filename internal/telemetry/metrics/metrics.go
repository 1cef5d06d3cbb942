// Package metrics exposes the engine's counters as Prometheus
// instrumentation, consumed by internal/httpstatus. The terminal dashboard
// does not use it; it reads engine.Snapshot directly.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the engine-wide set of Prometheus collectors. Construct one
// per process with New and register it with a *prometheus.Registry.
type Metrics struct {
	PositionsEvaluated prometheus.Counter
	BestChildUpdates   prometheus.Counter
	RootChanges        prometheus.Counter
	GraphVertices      prometheus.Gauge
	EQDepth            *prometheus.GaugeVec
	BQDepth            *prometheus.GaugeVec
}

// New builds and registers every collector against reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		PositionsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chessgraph_positions_evaluated_total",
			Help: "Total positions run through the Oracle by expansion workers.",
		}),
		BestChildUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chessgraph_best_child_updates_total",
			Help: "Total vertex best_child writes by backpropagation workers.",
		}),
		RootChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chessgraph_root_changes_total",
			Help: "Total committed root changes (coordinator prune runs).",
		}),
		GraphVertices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chessgraph_graph_vertices",
			Help: "Live vertex count across the Position Graph.",
		}),
		EQDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chessgraph_eq_pending",
			Help: "Pending Expansion Queue items, per worker shard.",
		}, []string{"worker"}),
		BQDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chessgraph_bq_pending",
			Help: "Pending Backpropagation Queue items, per worker shard.",
		}, []string{"worker"}),
	}
	reg.MustRegister(m.PositionsEvaluated, m.BestChildUpdates, m.RootChanges, m.GraphVertices, m.EQDepth, m.BQDepth)
	return m
}
