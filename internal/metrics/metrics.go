// Package metrics exposes the simulation's prometheus collectors. A nil
// *Metrics is valid and records nothing, so tests and embedders can skip it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"voxelcore/internal/profiling"
)

const namespace = "voxelcore"

// Metrics holds the collectors.
type Metrics struct {
	generated   prometheus.Counter
	evicted     prometheus.Counter
	storeLoaded prometheus.Counter
	saved       prometheus.Counter
	dropped     *prometheus.CounterVec
	loaded      prometheus.Gauge
	meshQuads   prometheus.Gauge
	durations   *prometheus.HistogramVec
}

// New builds the collectors and registers them with reg when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_generated_total",
			Help:      "Chunks created by the terrain generator.",
		}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_evicted_total",
			Help:      "Chunks dropped by streaming.",
		}),
		storeLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_restored_total",
			Help:      "Chunks replaced by persisted data.",
		}),
		saved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_saved_total",
			Help:      "Chunk blobs written to the store.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_total",
			Help:      "Inputs discarded by reason.",
		}, []string{"reason"}),
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_loaded",
			Help:      "Resident chunks.",
		}),
		meshQuads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mesh_quads",
			Help:      "Quads across all cached chunk meshes.",
		}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_seconds",
			Help:      "Duration of tracked simulation operations.",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.generated, m.evicted, m.storeLoaded, m.saved, m.dropped, m.loaded, m.meshQuads, m.durations)
	}
	return m
}

// Track returns a stop function that records the elapsed time under op,
// both in the histogram and in the per-tick profiler.
// Usage: defer m.Track("world.UpdateStreaming")()
func (m *Metrics) Track(op string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		profiling.Add(op, d)
		if m != nil {
			m.durations.WithLabelValues(op).Observe(d.Seconds())
		}
	}
}

func (m *Metrics) IncGenerated() {
	if m != nil {
		m.generated.Inc()
	}
}

func (m *Metrics) AddEvicted(n int) {
	if m != nil && n > 0 {
		m.evicted.Add(float64(n))
	}
}

func (m *Metrics) IncStoreLoaded() {
	if m != nil {
		m.storeLoaded.Inc()
	}
}

func (m *Metrics) IncSaved() {
	if m != nil {
		m.saved.Inc()
	}
}

// IncDropped counts a discarded input.
func (m *Metrics) IncDropped(reason string) {
	if m != nil {
		m.dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) SetLoaded(n int) {
	if m != nil {
		m.loaded.Set(float64(n))
	}
}

func (m *Metrics) SetMeshQuads(n int) {
	if m != nil {
		m.meshQuads.Set(float64(n))
	}
}
