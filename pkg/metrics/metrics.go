// Package metrics exposes Prometheus collectors for the toolkit's
// primitives. The primitives themselves record nothing; a collector reads
// a primitive's cheap introspection surface (Len, Cap, Get, Waiting, ...)
// at scrape time, so instrumentation costs nothing on the push/pop/check
// hot paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// DefaultRegistry is the registry the example binaries serve.
	DefaultRegistry = prometheus.NewRegistry()

	// DefaultRegisterer labels everything registered through it with the
	// toolkit's service name.
	DefaultRegisterer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "workctl"}, DefaultRegistry)
)

// QueueView is the read-only surface a work queue exposes to its
// collector. *workqueue.Queue[T] satisfies it for any T.
type QueueView interface {
	Name() string
	Len() int
	Cap() int
	IsClosed() bool
}

// FlagView is the read-only surface a sync flag exposes to its collector.
type FlagView interface {
	Name() string
	Get() bool
	Generation() uint64
}

// BarrierView is the read-only surface a barrier exposes to its collector.
type BarrierView interface {
	Name() string
	Parties() int
	Waiting() int
	Phase() uint64
}

// QueueCollector collects depth, capacity and closed state for one queue.
type QueueCollector struct {
	q QueueView

	depth    *prometheus.Desc
	capacity *prometheus.Desc
	closed   *prometheus.Desc
}

// NewQueueCollector creates a collector for q. Register it with a
// prometheus.Registerer; each queue needs its own collector.
func NewQueueCollector(q QueueView) *QueueCollector {
	labels := prometheus.Labels{"queue": q.Name()}
	return &QueueCollector{
		q: q,
		depth: prometheus.NewDesc(
			"workctl_queue_depth",
			"Number of work items currently queued",
			nil, labels,
		),
		capacity: prometheus.NewDesc(
			"workctl_queue_capacity",
			"Configured queue capacity (0 = unbounded)",
			nil, labels,
		),
		closed: prometheus.NewDesc(
			"workctl_queue_closed",
			"Whether the queue has been closed (0 or 1)",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *QueueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.depth
	ch <- c.capacity
	ch <- c.closed
}

// Collect implements prometheus.Collector.
func (c *QueueCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.depth, prometheus.GaugeValue, float64(c.q.Len()))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(c.q.Cap()))
	ch <- prometheus.MustNewConstMetric(c.closed, prometheus.GaugeValue, boolValue(c.q.IsClosed()))
}

// FlagCollector collects the value and transition count for one flag.
type FlagCollector struct {
	f FlagView

	value       *prometheus.Desc
	transitions *prometheus.Desc
}

// NewFlagCollector creates a collector for f.
func NewFlagCollector(f FlagView) *FlagCollector {
	labels := prometheus.Labels{"flag": f.Name()}
	return &FlagCollector{
		f: f,
		value: prometheus.NewDesc(
			"workctl_flag_value",
			"Current flag value (0 or 1)",
			nil, labels,
		),
		transitions: prometheus.NewDesc(
			"workctl_flag_transitions_total",
			"Number of flag value transitions",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *FlagCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.value
	ch <- c.transitions
}

// Collect implements prometheus.Collector.
func (c *FlagCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.value, prometheus.GaugeValue, boolValue(c.f.Get()))
	ch <- prometheus.MustNewConstMetric(c.transitions, prometheus.CounterValue, float64(c.f.Generation()))
}

// BarrierCollector collects party size, waiters and completed phases for
// one barrier.
type BarrierCollector struct {
	b BarrierView

	parties *prometheus.Desc
	waiting *prometheus.Desc
	phases  *prometheus.Desc
}

// NewBarrierCollector creates a collector for b.
func NewBarrierCollector(b BarrierView) *BarrierCollector {
	labels := prometheus.Labels{"barrier": b.Name()}
	return &BarrierCollector{
		b: b,
		parties: prometheus.NewDesc(
			"workctl_barrier_parties",
			"Number of participants per phase",
			nil, labels,
		),
		waiting: prometheus.NewDesc(
			"workctl_barrier_waiting",
			"Participants currently blocked in the present phase",
			nil, labels,
		),
		phases: prometheus.NewDesc(
			"workctl_barrier_phases_total",
			"Number of completed rendezvous",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *BarrierCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.parties
	ch <- c.waiting
	ch <- c.phases
}

// Collect implements prometheus.Collector.
func (c *BarrierCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.parties, prometheus.GaugeValue, float64(c.b.Parties()))
	ch <- prometheus.MustNewConstMetric(c.waiting, prometheus.GaugeValue, float64(c.b.Waiting()))
	ch <- prometheus.MustNewConstMetric(c.phases, prometheus.CounterValue, float64(c.b.Phase()))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
