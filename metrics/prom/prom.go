// Package prom exports memo registry metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/sitememo/memo"
)

// Adapter implements memo.Metrics with Prometheus counters labelled by site.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits    *prometheus.CounterVec
	misses  *prometheus.CounterVec
	inserts *prometheus.CounterVec
	slots   *prometheus.CounterVec
	evicts  *prometheus.CounterVec
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	vec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}, labels)
	}
	a := &Adapter{
		hits:    vec("hits_total", "Memoized calls answered from the store", "site"),
		misses:  vec("misses_total", "Memoized calls that ran the computation", "site"),
		inserts: vec("inserts_total", "Computed results offered to the store", "site"),
		slots:   vec("slots_total", "Stores created, one per site and instantiation", "site"),
		evicts:  vec("evictions_total", "Entries dropped by bounded stores, by reason", "site", "reason"),
	}
	reg.MustRegister(a.hits, a.misses, a.inserts, a.slots, a.evicts)
	return a
}

func (a *Adapter) Hit(site string)    { a.hits.WithLabelValues(site).Inc() }
func (a *Adapter) Miss(site string)   { a.misses.WithLabelValues(site).Inc() }
func (a *Adapter) Insert(site string) { a.inserts.WithLabelValues(site).Inc() }
func (a *Adapter) Slot(site string)   { a.slots.WithLabelValues(site).Inc() }

// Evicted counts an entry dropped from a store at site. Wire it into a
// backend's eviction callback, e.g. bounded.Options.OnEvict.
func (a *Adapter) Evicted(site, reason string) {
	a.evicts.WithLabelValues(site, reason).Inc()
}

// Compile-time check: ensure Adapter implements memo.Metrics.
var _ memo.Metrics = (*Adapter)(nil)
