package loader

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of a loader. Every collector has its
// own registry so several loaders can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	Loads         *prometheus.CounterVec
	PhaseDuration *prometheus.HistogramVec
	Reasoner      *prometheus.CounterVec

	Nodes         prometheus.Gauge
	Edges         prometheus.Gauge
	Axioms        prometheus.Counter
	SkippedValues *prometheus.CounterVec
	ShortcutEdges prometheus.Counter
	CategoryNodes *prometheus.GaugeVec
}

// NewMetrics creates a collector with the given namespace.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Total number of ontology loads",
			},
			[]string{"status"},
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_phase_duration_seconds",
				Help:      "Duration of each load phase in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"phase"},
		),
		Reasoner: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reasoner_runs_total",
				Help:      "Reasoner passes by outcome",
			},
			[]string{"outcome"},
		),
		Nodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_nodes",
				Help:      "Number of nodes in the graph after the last load",
			},
		),
		Edges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_relationships",
				Help:      "Number of relationships in the graph after the last load",
			},
		),
		Axioms: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "axioms_translated_total",
				Help:      "Total number of axioms translated",
			},
		),
		SkippedValues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "skipped_values_total",
				Help:      "Property values dropped during translation",
			},
			[]string{"reason"},
		),
		ShortcutEdges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shortcut_edges_total",
				Help:      "Total number of existential shortcut edges created",
			},
		),
		CategoryNodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "category_nodes",
				Help:      "Nodes tagged with each category by the last load",
			},
			[]string{"category"},
		),
	}

	registry.MustRegister(
		m.Loads,
		m.PhaseDuration,
		m.Reasoner,
		m.Nodes,
		m.Edges,
		m.Axioms,
		m.SkippedValues,
		m.ShortcutEdges,
		m.CategoryNodes,
	)
	return m
}

// Registry returns the registry for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes the current metrics in the Prometheus text format,
// for the node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observe(s *LoadStats) {
	for phase, d := range s.ElapsedByPhase {
		m.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
	}
	m.Nodes.Set(float64(s.NodeCount))
	m.Edges.Set(float64(s.EdgeCount))
	m.Axioms.Add(float64(s.Translation.Axioms))
	m.SkippedValues.WithLabelValues("unsupported").Add(float64(s.SkippedValues))
	m.SkippedValues.WithLabelValues("non_english").Add(float64(s.Translation.NonEnglish))
	m.SkippedValues.WithLabelValues("bad_literal").Add(float64(s.Translation.BadLiterals))
	m.ShortcutEdges.Add(float64(s.ShortcutEdges))
	for category, n := range s.Categories {
		m.CategoryNodes.WithLabelValues(category).Set(float64(n))
	}
}
