package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StoreOpCreate = "create"
	StoreOpUpdate = "update"
	StoreOpDelete = "delete"
)

// StoreMetrics captures reconciling-store health signals: background write
// failures that never surface to callers, demo fallbacks and snapshot volume.
type StoreMetrics struct {
	writeFailures      *prometheus.CounterVec
	demoFallbacks      *prometheus.CounterVec
	snapshotsApplied   *prometheus.CounterVec
	snapshotsPublished *prometheus.CounterVec
}

var (
	storeMetricsOnce sync.Once
	storeMetrics     *StoreMetrics
)

// Store returns the singleton store metrics registry.
func Store() *StoreMetrics {
	return StoreWithConfig(Config{})
}

// StoreWithConfig returns the singleton store metrics registry using config labels.
func StoreWithConfig(cfg Config) *StoreMetrics {
	storeMetricsOnce.Do(func() {
		storeMetrics = newStoreMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return storeMetrics
}

// ResetStoreMetricsForTest resets the store metrics singleton for tests.
func ResetStoreMetricsForTest() {
	storeMetricsOnce = sync.Once{}
	storeMetrics = nil
}

func newStoreMetrics(registerer prometheus.Registerer, cfg Config) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	writeFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "campusasset_store_write_failures_total",
		Help:        "Background document writes that failed after the action already returned.",
		ConstLabels: labels,
	}, []string{"collection", "op"})
	demoFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "campusasset_store_demo_fallbacks_total",
		Help:        "Stores that fell back to the demo seed on their first snapshot.",
		ConstLabels: labels,
	}, []string{"collection", "reason"})
	snapshotsApplied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "campusasset_store_snapshots_applied_total",
		Help:        "Full snapshots applied to live stores.",
		ConstLabels: labels,
	}, []string{"collection"})
	snapshotsPublished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "campusasset_store_snapshots_published_total",
		Help:        "Full snapshots published per collection after writes.",
		ConstLabels: labels,
	}, []string{"collection"})

	registerer.MustRegister(
		writeFailures,
		demoFallbacks,
		snapshotsApplied,
		snapshotsPublished,
	)

	return &StoreMetrics{
		writeFailures:      writeFailures,
		demoFallbacks:      demoFallbacks,
		snapshotsApplied:   snapshotsApplied,
		snapshotsPublished: snapshotsPublished,
	}
}

// IncWriteFailure increments the background write failure counter.
func (m *StoreMetrics) IncWriteFailure(collection, op string) {
	if m == nil || m.writeFailures == nil {
		return
	}
	m.writeFailures.WithLabelValues(collection, op).Inc()
}

// IncDemoFallback increments the demo fallback counter for a collection.
func (m *StoreMetrics) IncDemoFallback(collection, reason string) {
	if m == nil || m.demoFallbacks == nil {
		return
	}
	m.demoFallbacks.WithLabelValues(collection, reason).Inc()
}

// IncSnapshotApplied increments the applied snapshot counter.
func (m *StoreMetrics) IncSnapshotApplied(collection string) {
	if m == nil || m.snapshotsApplied == nil {
		return
	}
	m.snapshotsApplied.WithLabelValues(collection).Inc()
}

// IncSnapshotPublished increments the published snapshot counter.
func (m *StoreMetrics) IncSnapshotPublished(collection string) {
	if m == nil || m.snapshotsPublished == nil {
		return
	}
	m.snapshotsPublished.WithLabelValues(collection).Inc()
}
