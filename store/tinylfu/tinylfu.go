// Package tinylfu provides a memoization store backed by
// github.com/dgraph-io/ristretto/v2: a cost-bounded cache with TinyLFU
// admission and SampledLFU eviction.
//
// Admission is probabilistic. A newly computed result may be refused when
// the cache is full and the key is not hot enough; under memo that is
// indistinguishable from an immediate eviction and the result is simply
// computed again next time.
package tinylfu

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// Config sizes a TinyLFU store. Zero values are replaced in New:
//   - MaxCost <= 0      => 1 << 16
//   - NumCounters <= 0  => 10 * MaxCost
//   - BufferItems <= 0  => 64
//   - nil Cost          => every entry costs 1
type Config[V any] struct {
	// MaxCost bounds the total cost of resident entries. With the default
	// Cost it is the entry capacity.
	MaxCost int64
	// NumCounters is the number of keys whose frequency is tracked.
	NumCounters int64
	// BufferItems is the size of ristretto's Get buffers.
	BufferItems int64
	// Cost weighs an entry.
	Cost func(V) int64
	// Async skips waiting for ristretto's write buffer after Insert. Faster,
	// but a Get that immediately follows the Insert may still miss.
	Async bool
}

// Store is a TinyLFU cache. It is safe for concurrent use; Close releases
// its goroutines.
type Store[K ristretto.Key, V any] struct {
	c     *ristretto.Cache[K, V]
	cost  func(V) int64
	async bool
}

// New builds a TinyLFU store.
func New[K ristretto.Key, V any](cfg Config[V]) (*Store[K, V], error) {
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = 1 << 16
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = 10 * cfg.MaxCost
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	c, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("tinylfu: create cache: %w", err)
	}
	return &Store[K, V]{c: c, cost: cfg.Cost, async: cfg.Async}, nil
}

// Insert offers v under k to the cache. The cache may decline it.
func (s *Store[K, V]) Insert(k K, v V) {
	cost := int64(1)
	if s.cost != nil {
		cost = s.cost(v)
	}
	if s.c.Set(k, v, cost) && !s.async {
		s.c.Wait()
	}
}

// Get returns the value for k if resident.
func (s *Store[K, V]) Get(k K) (V, bool) { return s.c.Get(k) }

// Stats is a snapshot of ristretto's counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	KeysAdded   uint64
	KeysEvicted uint64
	SetsDropped uint64
	HitRatio    float64
}

// Stats returns the cache counters.
func (s *Store[K, V]) Stats() Stats {
	m := s.c.Metrics
	return Stats{
		Hits:        m.Hits(),
		Misses:      m.Misses(),
		KeysAdded:   m.KeysAdded(),
		KeysEvicted: m.KeysEvicted(),
		SetsDropped: m.SetsDropped(),
		HitRatio:    m.Ratio(),
	}
}

// Close stops the cache's goroutines. The store must not be used after.
func (s *Store[K, V]) Close() { s.c.Close() }
