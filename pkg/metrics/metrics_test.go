package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quadgatefoundation/workctl/pkg/barrier"
	"github.com/quadgatefoundation/workctl/pkg/metrics"
	"github.com/quadgatefoundation/workctl/pkg/syncflag"
	"github.com/quadgatefoundation/workctl/pkg/workqueue"
)

// gatherValue returns the value of the single metric in the named family,
// failing the test if the family is absent.
func gatherValue(t *testing.T, reg *prometheus.Registry, family string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() != family {
			continue
		}
		if len(f.Metric) != 1 {
			t.Fatalf("family %s has %d series, want 1", family, len(f.Metric))
		}
		m := f.Metric[0]
		if m.Gauge != nil {
			return m.Gauge.GetValue()
		}
		if m.Counter != nil {
			return m.Counter.GetValue()
		}
		t.Fatalf("family %s has no gauge or counter value", family)
	}
	t.Fatalf("family %s not found", family)
	return 0
}

func TestQueueCollector(t *testing.T) {
	reg := prometheus.NewRegistry()

	q := workqueue.NewWithConfig[int](workqueue.Config{Name: "jobs", Capacity: 8})
	if err := reg.Register(metrics.NewQueueCollector(q)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	q.Push(1)
	q.Push(2)

	if got := gatherValue(t, reg, "workctl_queue_depth"); got != 2 {
		t.Errorf("workctl_queue_depth = %v, want 2", got)
	}
	if got := gatherValue(t, reg, "workctl_queue_capacity"); got != 8 {
		t.Errorf("workctl_queue_capacity = %v, want 8", got)
	}
	if got := gatherValue(t, reg, "workctl_queue_closed"); got != 0 {
		t.Errorf("workctl_queue_closed = %v, want 0", got)
	}

	q.Close()
	if got := gatherValue(t, reg, "workctl_queue_closed"); got != 1 {
		t.Errorf("workctl_queue_closed = %v after Close, want 1", got)
	}
}

func TestFlagCollector(t *testing.T) {
	reg := prometheus.NewRegistry()

	f := syncflag.NewNamed("shutdown", false)
	if err := reg.Register(metrics.NewFlagCollector(f)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if got := gatherValue(t, reg, "workctl_flag_value"); got != 0 {
		t.Errorf("workctl_flag_value = %v, want 0", got)
	}

	f.Set(true)
	if got := gatherValue(t, reg, "workctl_flag_value"); got != 1 {
		t.Errorf("workctl_flag_value = %v after Set(true), want 1", got)
	}
	if got := gatherValue(t, reg, "workctl_flag_transitions_total"); got != 1 {
		t.Errorf("workctl_flag_transitions_total = %v, want 1", got)
	}
}

func TestBarrierCollector(t *testing.T) {
	reg := prometheus.NewRegistry()

	b := barrier.NewNamed("phases", 1)
	if err := reg.Register(metrics.NewBarrierCollector(b)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	b.Wait()
	b.Wait()

	if got := gatherValue(t, reg, "workctl_barrier_parties"); got != 1 {
		t.Errorf("workctl_barrier_parties = %v, want 1", got)
	}
	if got := gatherValue(t, reg, "workctl_barrier_phases_total"); got != 2 {
		t.Errorf("workctl_barrier_phases_total = %v, want 2", got)
	}
	if got := gatherValue(t, reg, "workctl_barrier_waiting"); got != 0 {
		t.Errorf("workctl_barrier_waiting = %v, want 0", got)
	}
}

func TestDefaultRegisterer_ServiceLabel(t *testing.T) {
	q := workqueue.NewWithConfig[int](workqueue.Config{Name: "labelled"})
	c := metrics.NewQueueCollector(q)

	if err := metrics.DefaultRegisterer.Register(c); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer metrics.DefaultRegisterer.Unregister(c)

	families, err := metrics.DefaultRegistry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() != "workctl_queue_depth" {
			continue
		}
		for _, m := range f.Metric {
			for _, l := range m.Label {
				if l.GetName() == "service" && l.GetValue() == "workctl" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("workctl_queue_depth is missing the service=workctl label")
	}
}
