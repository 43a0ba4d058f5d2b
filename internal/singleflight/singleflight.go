// Package singleflight coalesces concurrent computations of the same key.
package singleflight

import (
	"context"
	"fmt"
	"sync"
)

// Group runs fn at most once at a time per key K. Callers that arrive while a
// computation for their key is in flight wait for it and share its result.
//
// Concurrency notes:
//   - The first caller for a key becomes the leader and runs fn.
//   - Publishing (val, err) happens-before close(c.done), so followers that
//     observe done also observe the final values.
//   - Cancelling ctx in a follower unblocks only that follower; the leader
//     keeps running fn.
//   - If fn panics, followers receive a *PanicError and the leader re-panics.
//
// The zero value is ready to use.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error
	dups int
}

// PanicError is returned to followers whose leader panicked.
type PanicError struct {
	Value any
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("singleflight: leader panicked: %v", p.Value)
}

// Do runs fn for key unless a run is already in flight, in which case it
// waits for that run. shared reports whether the result was handed to more
// than one caller.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, shared bool, err error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, true, c.err
		case <-ctx.Done():
			var zero V
			return zero, true, ctx.Err()
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.run(key, c, fn)

	g.mu.Lock()
	shared = c.dups > 0
	g.mu.Unlock()
	return c.val, shared, c.err
}

// InFlight reports how many keys currently have a leader running.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}

// run executes fn outside the lock, publishes its result and removes the
// in-flight marker, even if fn panics.
func (g *Group[K, V]) run(key K, c *call[V], fn func() (V, error)) {
	normal := false
	defer func() {
		var rec any
		if !normal {
			rec = recover()
			c.err = &PanicError{Value: rec}
		}
		g.mu.Lock()
		delete(g.m, key)
		g.mu.Unlock()
		close(c.done)
		if !normal {
			panic(rec)
		}
	}()
	c.val, c.err = fn()
	normal = true
}
