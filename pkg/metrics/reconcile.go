package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics records counters for the stock reconciliation engine.
type ReconcileMetrics struct {
	duration          *prometheus.HistogramVec
	restoredUnits     *prometheus.CounterVec
	deductedUnits     *prometheus.CounterVec
	locatorMatches    *prometheus.CounterVec
	consistencyFaults prometheus.Counter
	duplicateRequests prometheus.Counter
}

// NewReconcileMetrics registers the reconciliation metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reconcile_duration_seconds",
		Help:    "Duration of member uniform reconciliation requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	restored := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_restored_units_total",
		Help: "Units returned to stock by reconciliation.",
	}, []string{"category"})
	deducted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_deducted_units_total",
		Help: "Units removed from stock by reconciliation.",
	}, []string{"category"})
	locator := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_locator_matches_total",
		Help: "Stock locator resolutions by matching strategy.",
	}, []string{"strategy"})
	faults := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reconcile_consistency_faults_total",
		Help: "Read-back verification failures during stock mutation.",
	})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reconcile_duplicate_requests_total",
		Help: "Update requests suppressed by the idempotency guard.",
	})
	reg.MustRegister(duration, restored, deducted, locator, faults, duplicates)
	return &ReconcileMetrics{
		duration:          duration,
		restoredUnits:     restored,
		deductedUnits:     deducted,
		locatorMatches:    locator,
		consistencyFaults: faults,
		duplicateRequests: duplicates,
	}
}

// ObserveDuration records the duration for one reconciliation pass.
func (m *ReconcileMetrics) ObserveDuration(mode string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(mode)).Observe(duration.Seconds())
}

// AddRestored accumulates restored units for the category.
func (m *ReconcileMetrics) AddRestored(category string, units int) {
	if m == nil || m.restoredUnits == nil || units <= 0 {
		return
	}
	m.restoredUnits.WithLabelValues(normalizeLabel(category)).Add(float64(units))
}

// AddDeducted accumulates deducted units for the category.
func (m *ReconcileMetrics) AddDeducted(category string, units int) {
	if m == nil || m.deductedUnits == nil || units <= 0 {
		return
	}
	m.deductedUnits.WithLabelValues(normalizeLabel(category)).Add(float64(units))
}

// IncLocatorMatch counts a locator resolution by strategy name.
func (m *ReconcileMetrics) IncLocatorMatch(strategy string) {
	if m == nil || m.locatorMatches == nil {
		return
	}
	m.locatorMatches.WithLabelValues(normalizeLabel(strategy)).Inc()
}

// IncConsistencyFault counts a failed read-back verification.
func (m *ReconcileMetrics) IncConsistencyFault() {
	if m == nil || m.consistencyFaults == nil {
		return
	}
	m.consistencyFaults.Inc()
}

// IncDuplicateRequest counts a suppressed duplicate update request.
func (m *ReconcileMetrics) IncDuplicateRequest() {
	if m == nil || m.duplicateRequests == nil {
		return
	}
	m.duplicateRequests.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
