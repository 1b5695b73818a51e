package service

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsService encapsulates Prometheus instrumentation for the scheduling
// core and keeps lightweight atomic counters for snapshot consumers.
type MetricsService struct {
	registry      *prometheus.Registry
	lessonFetches *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	staleDrops    prometheus.Counter
	gridBuilds    prometheus.Counter
	exports       *prometheus.CounterVec

	fetchCount     uint64
	cacheHitCount  uint64
	staleDropCount uint64
}

// NewMetricsService registers the scheduling collectors on a fresh registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	lessonFetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lesson_fetches_total",
		Help: "Lesson aggregate fetches by source (memory, redis, db) and result",
	}, []string{"source", "result"})

	fetchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lesson_fetch_duration_seconds",
		Help:    "Duration of lesson aggregate fetches",
		Buckets: prometheus.DefBuckets,
	})

	staleDrops := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stale_responses_dropped_total",
		Help: "Fetch responses discarded because a newer navigation superseded them",
	})

	gridBuilds := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grid_builds_total",
		Help: "Calendar grid constructions",
	})

	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_exports_total",
		Help: "Schedule exports by format",
	}, []string{"format"})

	registry.MustRegister(lessonFetches, fetchDuration, staleDrops, gridBuilds, exports)

	return &MetricsService{
		registry:      registry,
		lessonFetches: lessonFetches,
		fetchDuration: fetchDuration,
		staleDrops:    staleDrops,
		gridBuilds:    gridBuilds,
		exports:       exports,
	}
}

// Registry exposes the underlying registry for embedding callers.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFetch records one lesson fetch.
func (m *MetricsService) ObserveFetch(source, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.lessonFetches.WithLabelValues(source, result).Inc()
	m.fetchDuration.Observe(elapsed.Seconds())
	atomic.AddUint64(&m.fetchCount, 1)
	if source != "db" && result == "hit" {
		atomic.AddUint64(&m.cacheHitCount, 1)
	}
}

// StaleDrop records a superseded fetch response being discarded.
func (m *MetricsService) StaleDrop() {
	if m == nil {
		return
	}
	m.staleDrops.Inc()
	atomic.AddUint64(&m.staleDropCount, 1)
}

// GridBuild records a grid construction.
func (m *MetricsService) GridBuild() {
	if m == nil {
		return
	}
	m.gridBuilds.Inc()
}

// Export records a rendered export.
func (m *MetricsService) Export(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// Snapshot is a plain view of the counters for diagnostics.
type Snapshot struct {
	Fetches    uint64 `json:"fetches"`
	CacheHits  uint64 `json:"cache_hits"`
	StaleDrops uint64 `json:"stale_drops"`
}

// Snapshot returns current counter values.
func (m *MetricsService) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Fetches:    atomic.LoadUint64(&m.fetchCount),
		CacheHits:  atomic.LoadUint64(&m.cacheHitCount),
		StaleDrops: atomic.LoadUint64(&m.staleDropCount),
	}
}
