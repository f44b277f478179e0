package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage labels
const (
	StageLoad    = "load"
	StageBuild   = "build"
	StageWrite   = "write"
	StagePublish = "publish"
)

// Skip reasons
const (
	SkipIgnored   = "ignored"
	SkipMalformed = "malformed"
	SkipFiltered  = "filtered"
)

// RecordLoad records the outcome of loading one structure
func (r *Registry) RecordLoad(atoms, ignored, malformed, filtered int, duration time.Duration) {
	r.AtomsLoadedTotal.Add(float64(atoms))
	r.RecordsSkippedTotal.WithLabelValues(SkipIgnored).Add(float64(ignored))
	r.RecordsSkippedTotal.WithLabelValues(SkipMalformed).Add(float64(malformed))
	r.RecordsSkippedTotal.WithLabelValues(SkipFiltered).Add(float64(filtered))
	r.StructureAtoms.Observe(float64(atoms))
	r.StageDuration.WithLabelValues(StageLoad).Observe(duration.Seconds())
}

// RecordBuild records one graph construction
func (r *Registry) RecordBuild(pairs int64, duration time.Duration) {
	r.PairsEvaluatedTotal.Add(float64(pairs))
	r.StageDuration.WithLabelValues(StageBuild).Observe(duration.Seconds())
}

// RecordWrite records one edge list serialisation
func (r *Registry) RecordWrite(edges int, duration time.Duration) {
	r.EdgesEmittedTotal.Add(float64(edges))
	r.StageDuration.WithLabelValues(StageWrite).Observe(duration.Seconds())
}

// RecordConversion counts a finished conversion
func (r *Registry) RecordConversion(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.ConversionsTotal.WithLabelValues(status).Inc()
}

// RecordPublish counts one publication attempt
func (r *Registry) RecordPublish(target string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.PublishTotal.WithLabelValues(target, status).Inc()
	r.StageDuration.WithLabelValues(StagePublish).Observe(duration.Seconds())
}

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector. The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
