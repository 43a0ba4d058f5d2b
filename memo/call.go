package memo

import (
	"context"

	"github.com/IvanBrykalov/sitememo/internal/singleflight"
	"github.com/IvanBrykalov/sitememo/store"
)

// Call memoizes compute at site under key, using the default exact-match
// store (*store.Map[K, K, R]). On a hit compute is not executed and a clone
// of the cached result is returned.
func Call[K comparable, R any](site *Site, key K, compute func() R) R {
	return CallIn(site, key, key, store.NewMap[K, R], compute)
}

// CallWith memoizes compute at site under key in a store of type S.
// init constructs the store on first use at this instantiation; a nil init
// falls back to Default[S].
func CallWith[K, R any, S Store[K, K, R]](site *Site, key K, init func() S, compute func() R) R {
	return CallIn(site, key, key, init, compute)
}

// CallIn is the general form of the lookup/compute/insert protocol.
// query is the view of key used for the lookup; key itself is only needed
// if the lookup misses.
//
//  1. Resolve the slot for (site, K, R), creating the store with init if absent.
//  2. Lock the slot and Get(query). On a hit, unlock and return a clone.
//  3. On a miss, unlock, then run compute with no lock held.
//  4. Lock again, Insert(key, clone of result), unlock, return the result.
//
// Concurrent misses on the same key each run compute; the last Insert wins.
func CallIn[K, Q, R any, S Store[K, Q, R]](site *Site, key K, query Q, init func() S, compute func() R) R {
	sl := site.resolve(InstantiationOf[K, R](), erase(init))
	st := access[S](site, sl)

	if v, ok := lookup[K, Q, R](site, sl, st, query); ok {
		return v
	}

	v := compute()
	sl.guard(site, func() { st.Insert(key, clone(v)) })
	site.inserted()
	return v
}

// CallOnce is the coalescing variant of Call: while one caller computes a
// key, other callers of the same key at the same instantiation wait and share
// its result. Errors are returned to every waiting caller and not cached.
// A caller whose ctx is done stops waiting and gets ctx.Err(); the running
// computation is not interrupted.
func CallOnce[K comparable, R any](ctx context.Context, site *Site, key K, compute func(context.Context) (R, error)) (R, error) {
	sl := site.resolve(InstantiationOf[K, R](), erase(store.NewMap[K, R]))
	st := access[*store.Map[K, K, R]](site, sl)

	if v, ok := lookup[K, K, R](site, sl, st, key); ok {
		return v, nil
	}

	v, _, err := flightOf[K, R](site, sl).Do(ctx, key, func() (R, error) {
		var (
			hit R
			ok  bool
		)
		// a previous leader may have finished between our miss and the join
		sl.guard(site, func() { hit, ok = st.Get(key) })
		if ok {
			return hit, nil
		}
		r, err := compute(ctx)
		if err != nil {
			return r, err
		}
		sl.guard(site, func() { st.Insert(key, clone(r)) })
		site.inserted()
		return r, nil
	})
	return clone(v), err
}

// lookup runs the guarded Get and records the outcome.
func lookup[K, Q, R any, S Store[K, Q, R]](site *Site, sl *slot, st S, query Q) (R, bool) {
	var (
		v  R
		ok bool
	)
	sl.guard(site, func() {
		v, ok = st.Get(query)
		if ok {
			v = clone(v)
		}
	})
	if ok {
		site.hit()
	} else {
		site.miss()
	}
	return v, ok
}

// flightOf returns the singleflight group of sl, creating it on first use.
func flightOf[K comparable, R any](site *Site, sl *slot) *singleflight.Group[K, R] {
	var g *singleflight.Group[K, R]
	sl.guard(site, func() {
		if sl.flight == nil {
			sl.flight = &singleflight.Group[K, R]{}
		}
		g = sl.flight.(*singleflight.Group[K, R])
	})
	return g
}

// erase hides the store type behind any so the site can hold stores of
// every instantiation in one table.
func erase[S any](init func() S) func() any {
	if init == nil {
		return func() any { return Default[S]() }
	}
	return func() any { return init() }
}
