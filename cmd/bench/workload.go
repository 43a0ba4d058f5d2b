package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/IvanBrykalov/sitememo/memo"
	pmet "github.com/IvanBrykalov/sitememo/metrics/prom"
	"github.com/IvanBrykalov/sitememo/policy/twoq"
	"github.com/IvanBrykalov/sitememo/store"
	"github.com/IvanBrykalov/sitememo/store/bounded"
	"github.com/IvanBrykalov/sitememo/store/expiring"
	"github.com/IvanBrykalov/sitememo/store/tinylfu"
)

// collatz returns the number of steps n takes to reach 1. It is the
// memoized computation: cheap enough to run millions of times, costly
// enough that hits are visible.
func collatz(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	var steps uint64
	for n != 1 {
		if n&1 == 0 {
			n >>= 1
		} else {
			n = 3*n + 1
		}
		steps++
	}
	return steps
}

// memoized is one memoized entry point plus cleanup for the store it owns.
type memoized struct {
	call  func(ctx context.Context, n uint64) (uint64, error)
	mu    sync.Mutex
	close []func()
}

func (m *memoized) onClose(fn func()) {
	m.mu.Lock()
	m.close = append(m.close, fn)
	m.mu.Unlock()
}

// Close releases background resources of the backend, if any.
func (m *memoized) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fn := range m.close {
		fn()
	}
	m.close = nil
}

// newMemoized binds collatz to site through the backend named in cfg.
// Stores are created lazily by the runtime on first call.
func newMemoized(cfg config, site *memo.Site, metrics *pmet.Adapter) (*memoized, error) {
	m := &memoized{}
	compute := func(n uint64) func() uint64 { return func() uint64 { return collatz(n) } }
	plain := func(fn func(n uint64) uint64) {
		m.call = func(_ context.Context, n uint64) (uint64, error) { return fn(n), nil }
	}
	must := func(err error) {
		if err != nil {
			panic(err) // validated before the first call
		}
	}

	switch cfg.Backend {
	case "map":
		if cfg.Once {
			m.call = func(ctx context.Context, n uint64) (uint64, error) {
				return memo.CallOnce(ctx, site, n, func(context.Context) (uint64, error) { return collatz(n), nil })
			}
			break
		}
		plain(func(n uint64) uint64 { return memo.Call(site, n, compute(n)) })

	case "tree":
		plain(func(n uint64) uint64 {
			return memo.CallWith(site, n, store.NewTree[uint64, uint64], compute(n))
		})

	case "bounded-lru", "bounded-2q":
		opts := bounded.Options[uint64, uint64]{
			Capacity: cfg.Capacity,
			OnEvict: func(_, _ uint64, r bounded.EvictReason) {
				if metrics != nil {
					metrics.Evicted(site.Name(), r.String())
				}
			},
		}
		if cfg.Backend == "bounded-2q" {
			opts.Policy = twoq.Sized[uint64, uint64](cfg.Capacity)
		}
		if _, err := bounded.New(opts); err != nil {
			return nil, err
		}
		plain(func(n uint64) uint64 {
			return memo.CallWith(site, n, func() *bounded.Store[uint64, uint64] {
				return bounded.MustNew(opts)
			}, compute(n))
		})

	case "expiring":
		ecfg := expiring.Config{Size: cfg.Capacity, TTL: cfg.TTL}
		plain(func(n uint64) uint64 {
			return memo.CallWith(site, n, func() *expiring.Store[uint64, uint64] {
				s, err := expiring.New[uint64, uint64](ecfg, nil)
				must(err)
				m.onClose(s.Close)
				return s
			}, compute(n))
		})

	case "tinylfu":
		tcfg := tinylfu.Config[uint64]{MaxCost: int64(cfg.Capacity)}
		plain(func(n uint64) uint64 {
			return memo.CallWith(site, n, func() *tinylfu.Store[uint64, uint64] {
				s, err := tinylfu.New[uint64, uint64](tcfg)
				must(err)
				m.onClose(s.Close)
				return s
			}, compute(n))
		})

	default:
		return nil, fmt.Errorf("bench: unknown backend %q", cfg.Backend)
	}
	return m, nil
}
