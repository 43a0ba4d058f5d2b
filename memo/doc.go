// Package memo is a per-call-site memoization runtime.
//
// A memoized function is identified by its call site (a *Site) and looks up
// previously computed results by a key derived from its arguments. Each call
// site owns one store per instantiation, so a generic function called with
// different type arguments keeps independent caches.
//
// Design
//
//   - Registry: a process-wide directory of sites (DefaultRegistry), split into
//     shards keyed by a hash of the site name. Sites are created lazily by At
//     and never removed. NewRegistry builds an isolated directory.
//
//   - Instantiation: the (key type, result type) pair of an invocation.
//     A site maps every instantiation to a slot, created on first use by
//     running the store initializer exactly once.
//
//   - Slot: owns one store behind an interface value, tagged with the
//     store's dynamic type. Every access re-checks the tag; a mismatch is a
//     programming error and panics with *TypeMismatchError.
//
//   - Store: anything with Insert(K, R) and Get(Q) (R, bool). Baseline
//     backends live in package store (hash map and B-tree); bounded,
//     expiring and TinyLFU backends live in its subpackages.
//
//   - Protocol: lock the slot, Get, unlock. On a hit the result is cloned
//     and returned. On a miss the computation runs with no lock held, then
//     the slot is locked again to Insert a clone of the result.
//
// Concurrency
//
// Concurrent misses on the same key are not coalesced: each caller computes
// and inserts, and the last insert wins. Wrap only pure or idempotent
// computations. CallOnce is the opt-in variant that shares one in-flight
// computation per key.
//
// A panic that unwinds through a store initializer or a store method poisons
// the site or slot. Later calls panic with an error wrapping ErrPoisoned;
// recovery is not supported. Panics from the memoized computation itself
// propagate to the caller without poisoning anything, because no lock is held
// while it runs.
//
// Basic usage
//
//	var fSite = memo.At("example.f")
//
//	func f(_ bool, b uint) uint {
//	    return memo.Call(fSite, b, func() uint { return b + 4 })
//	}
//
// With an explicit store
//
//	func slow(n int) int {
//	    return memo.CallWith(slowSite, n, store.NewTree[int, int], func() int {
//	        return expensive(n)
//	    })
//	}
//
// Caching only successful outcomes
//
//	func load(id uint) (User, error) {
//	    return memo.CallWith(loadSite, id, func() *store.Admitting[uint, uint, memo.Result[User]] {
//	        return store.AdmitMap[uint](memo.Result[User].OK)
//	    }, func() memo.Result[User] {
//	        u, err := fetch(id)
//	        return memo.Try(u, err)
//	    }).Unwrap()
//	}
//
// Exporting metrics
//
//	reg := memo.NewRegistry(memo.WithMetrics(prom.New(nil, "app", "memo", nil)))
package memo
