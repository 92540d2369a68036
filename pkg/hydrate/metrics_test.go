package hydrate

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// The scheduler records unconditionally; a nil *Metrics must be a no-op.
func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.recordScheduled()
	m.recordTransition(StatePending, StateLoading)
	m.recordActivation(time.Millisecond)
	m.recordError("activation")
}

func TestMetrics_Registers(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(registry), WithNamespace("test"))

	m.recordScheduled()
	m.recordTransition(StatePending, StateLoading)
	m.recordTransition(StateLoading, StateHydrated)
	m.recordActivation(5 * time.Millisecond)
	m.recordError("dependency")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	want := map[string]bool{
		"test_hydrate_islands_scheduled_total":     false,
		"test_hydrate_islands":                     false,
		"test_hydrate_activation_duration_seconds": false,
		"test_hydrate_activation_errors_total":     false,
	}
	for _, mf := range families {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("metric %s not registered", name)
		}
	}
}
