// Package lru implements least-recently-used replacement.
package lru

import "github.com/IvanBrykalov/sitememo/policy"

// tracker keeps the store's list in pure recency order. It never picks a
// victim itself; the store trims from the back when over its limits.
type tracker[K comparable, V any] struct {
	l policy.List[K, V]
}

type lruPolicy[K comparable, V any] struct{}

// New returns the LRU policy.
func New[K comparable, V any]() policy.Policy[K, V] { return lruPolicy[K, V]{} }

func (lruPolicy[K, V]) Bind(l policy.List[K, V]) policy.Tracker[K, V] {
	return &tracker[K, V]{l: l}
}

func (t *tracker[K, V]) Admit(e policy.Entry[K, V]) policy.Entry[K, V] {
	t.l.PushFront(e)
	return nil
}

func (t *tracker[K, V]) Touch(e policy.Entry[K, V]) { t.l.MoveToFront(e) }

// Replace treats an overwrite as a use.
func (t *tracker[K, V]) Replace(e policy.Entry[K, V]) { t.l.MoveToFront(e) }

func (t *tracker[K, V]) Forget(policy.Entry[K, V]) {}
