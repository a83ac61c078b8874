package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestReconcileMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewReconcileMetrics(reg)

	metrics.ObserveDuration("replace", 120*time.Millisecond)
	metrics.AddRestored("Uniform No 3", 2)
	metrics.AddDeducted("Boots", 3)
	metrics.IncLocatorMatch("size_variant")
	metrics.IncConsistencyFault()
	metrics.IncDuplicateRequest()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "reconcile_restored_units_total", "category", "Uniform No 3"); err != nil {
		t.Fatalf("fetch restored: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 restored units, got %v", got)
	}

	if got, err := fetchCounterValue(mfs, "reconcile_deducted_units_total", "category", "Boots"); err != nil {
		t.Fatalf("fetch deducted: %v", err)
	} else if got != 3 {
		t.Fatalf("expected 3 deducted units, got %v", got)
	}

	if got, err := fetchCounterValue(mfs, "stock_locator_matches_total", "strategy", "size_variant"); err != nil {
		t.Fatalf("fetch locator: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 locator match, got %v", got)
	}
}

func TestReconcileMetricsNilSafe(t *testing.T) {
	var metrics *ReconcileMetrics
	metrics.ObserveDuration("single", time.Second)
	metrics.AddRestored("x", 1)
	metrics.AddDeducted("x", 1)
	metrics.IncLocatorMatch("exact")
	metrics.IncConsistencyFault()
	metrics.IncDuplicateRequest()

	empty := NewReconcileMetrics(nil)
	empty.AddRestored("x", 1)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, labelName, labelValue string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == labelName && label.GetValue() == labelValue {
					return metric.GetCounter().GetValue(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("metric %s{%s=%q} not found", name, labelName, labelValue)
}
