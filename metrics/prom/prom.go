// Package prom exports page cache metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/pagecache/cache"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	evicts        *prometheus.CounterVec
	flushes       prometheus.Counter
	fetchFailures prometheus.Counter
	resident      prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:          counter("hits_total", "Page fetches served from a resident slot"),
		misses:        counter("misses_total", "Page fetches that found no resident slot"),
		flushes:       counter("flushes_total", "Dirty pages written back to the store"),
		fetchFailures: counter("fetch_failures_total", "Fetches that exhausted their attempt budget"),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Slots that lost their page, by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		resident: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "resident_pages",
			Help:        "Number of slots currently holding a page",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.flushes, a.fetchFailures, a.resident)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Flush increments the write-back counter.
func (a *Adapter) Flush() { a.flushes.Inc() }

// FetchFailure increments the exhausted-fetch counter.
func (a *Adapter) FetchFailure() { a.fetchFailures.Inc() }

// Resident updates the resident-pages gauge.
func (a *Adapter) Resident(n int) { a.resident.Set(float64(n)) }

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
