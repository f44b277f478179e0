package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLoaderMetrics() {
	r.AtomsLoadedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "pdbgraph_atoms_loaded_total",
			Help: "Total number of ATOM records kept for graph construction",
		},
	)

	r.RecordsSkippedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdbgraph_records_skipped_total",
			Help: "Input lines not used as atoms, by reason",
		},
		[]string{"reason"},
	)
}

func (r *Registry) initBuilderMetrics() {
	r.PairsEvaluatedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "pdbgraph_pairs_evaluated_total",
			Help: "Total number of atom pairs tested against the cutoff",
		},
	)

	r.EdgesEmittedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "pdbgraph_edges_emitted_total",
			Help: "Total number of edges written",
		},
	)

	r.StructureAtoms = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdbgraph_structure_atoms",
			Help:    "Atoms per converted structure",
			Buckets: prometheus.ExponentialBuckets(100, 4, 8),
		},
	)
}

func (r *Registry) initRunMetrics() {
	r.ConversionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdbgraph_conversions_total",
			Help: "Total number of structure conversions",
		},
		[]string{"status"},
	)

	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdbgraph_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"stage"},
	)

	r.PublishTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdbgraph_publish_total",
			Help: "Edge list publications by target and status",
		},
		[]string{"target", "status"},
	)
}
