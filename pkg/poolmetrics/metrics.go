// Package poolmetrics provides Prometheus instrumentation for a
// respool.Pool. Every Pool built by respool.New records its counters
// through a Collector labelled with the pool's Name; there is no option to
// turn this off. It is observation-only: the pool's decision logic never
// reads a metric back.
//
// # Basic usage
//
//	collector := poolmetrics.NewCollector("db")
//	defer collector.Close()
//	...
//	s := pool.Stats()
//	collector.Observe(poolmetrics.Snapshot{
//		Size: s.Size, Available: s.Available, Using: s.Using,
//		Waiting: s.Waiting, UnderValidation: s.UnderValidation,
//	})
package poolmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// size, available, using, waiting, underValidation mirror the pool's
	// own introspection getters, one gauge vector per counter, labelled by
	// pool name so many pools can share a process registry.
	size = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Name: "respool_size", Help: "Total resources alive or being created."},
		[]string{"pool"},
	)
	available = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Name: "respool_available", Help: "Idle resources ready to be dispensed."},
		[]string{"pool"},
	)
	using = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Name: "respool_using", Help: "Resources currently checked out."},
		[]string{"pool"},
	)
	waiting = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Name: "respool_waiting", Help: "Acquire calls blocked on a handle."},
		[]string{"pool"},
	)
	underValidation = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Name: "respool_under_validation", Help: "Resources temporarily removed for async validation."},
		[]string{"pool"},
	)

	createdTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "respool_created_total", Help: "Resources successfully created."},
		[]string{"pool"},
	)
	destroyedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "respool_destroyed_total", Help: "Resources destroyed, for any reason."},
		[]string{"pool"},
	)
	reapedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "respool_reaped_total", Help: "Resources destroyed by the idle reaper."},
		[]string{"pool"},
	)
	factoryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "respool_factory_errors_total", Help: "Factory Create failures."},
		[]string{"pool"},
	)
	timeoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "respool_acquire_timeouts_total", Help: "Acquire calls that expired their deadline."},
		[]string{"pool"},
	)

	acquireWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "respool_acquire_wait_seconds",
			Help: "Time an Acquire call spent waiting for a handle.",
			Buckets: []float64{
				0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30,
			},
		},
		[]string{"pool"},
	)
)

// Snapshot is the subset of a pool's introspection counters a Collector
// records. It mirrors respool.Stats so callers never need to import
// respool just to report metrics.
type Snapshot struct {
	Size            int
	Available       int
	Using           int
	Waiting         int
	UnderValidation int
}

// Collector records a single pool's metrics under a fixed "pool" label.
// Safe for concurrent use.
type Collector struct {
	name string
	mu   sync.Mutex
}

// NewCollector creates a Collector for a pool named name. The name is
// used verbatim as the "pool" label on every series.
func NewCollector(name string) *Collector {
	return &Collector{name: name}
}

// Observe records a point-in-time snapshot of the pool's gauges.
func (c *Collector) Observe(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	size.WithLabelValues(c.name).Set(float64(s.Size))
	available.WithLabelValues(c.name).Set(float64(s.Available))
	using.WithLabelValues(c.name).Set(float64(s.Using))
	waiting.WithLabelValues(c.name).Set(float64(s.Waiting))
	underValidation.WithLabelValues(c.name).Set(float64(s.UnderValidation))
}

// IncCreated increments the created-resource counter.
func (c *Collector) IncCreated() { createdTotal.WithLabelValues(c.name).Inc() }

// IncDestroyed increments the destroyed-resource counter.
func (c *Collector) IncDestroyed() { destroyedTotal.WithLabelValues(c.name).Inc() }

// IncReaped increments the idle-reaped counter (also counts as destroyed).
func (c *Collector) IncReaped() {
	reapedTotal.WithLabelValues(c.name).Inc()
	destroyedTotal.WithLabelValues(c.name).Inc()
}

// IncFactoryError increments the factory-error counter.
func (c *Collector) IncFactoryError() { factoryErrorsTotal.WithLabelValues(c.name).Inc() }

// IncTimeout increments the acquire-timeout counter.
func (c *Collector) IncTimeout() { timeoutsTotal.WithLabelValues(c.name).Inc() }

// ObserveAcquireWait records how long an Acquire call waited before it
// was fulfilled or failed.
func (c *Collector) ObserveAcquireWait(d time.Duration) {
	acquireWait.WithLabelValues(c.name).Observe(d.Seconds())
}

// Close removes this collector's series from the default registry so a
// short-lived pool (as in tests) doesn't leak label values forever.
func (c *Collector) Close() {
	size.DeleteLabelValues(c.name)
	available.DeleteLabelValues(c.name)
	using.DeleteLabelValues(c.name)
	waiting.DeleteLabelValues(c.name)
	underValidation.DeleteLabelValues(c.name)
	createdTotal.DeleteLabelValues(c.name)
	destroyedTotal.DeleteLabelValues(c.name)
	reapedTotal.DeleteLabelValues(c.name)
	factoryErrorsTotal.DeleteLabelValues(c.name)
	timeoutsTotal.DeleteLabelValues(c.name)
	acquireWait.DeleteLabelValues(c.name)
}
