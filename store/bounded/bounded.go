// Package bounded provides a memoization store with a fixed entry capacity,
// an optional cost limit and a pluggable replacement policy (policy/lru,
// policy/twoq).
//
// A Store is not safe for concurrent use on its own; the memo runtime
// serializes Insert and Get through the owning slot's lock. A hit counts as
// use, so Get updates recency and must not run concurrently with itself
// either.
//
//	memo.CallWith(site, key, func() *bounded.Store[string, Page] {
//	    s, _ := bounded.New(bounded.Options[string, Page]{Capacity: 1024})
//	    return s
//	}, render)
package bounded

import (
	"github.com/IvanBrykalov/sitememo/policy"
	"github.com/IvanBrykalov/sitememo/policy/lru"
)

// Store is a capacity-bounded key -> value store backed by a map and an
// intrusive recency list (head = most recent, tail = least recent).
type Store[K comparable, V any] struct {
	m    map[K]*entry[K, V]
	head *entry[K, V]
	tail *entry[K, V]
	len  int
	cost int64

	cap     int
	maxCost int64
	costFn  func(V) int64
	onEvict func(K, V, EvictReason)

	tr     policy.Tracker[K, V]
	evicts uint64
}

// New builds a store from opts.
func New[K comparable, V any](opts Options[K, V]) (*Store[K, V], error) {
	if opts.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	pol := opts.Policy
	if pol == nil {
		pol = lru.New[K, V]()
	}
	s := &Store[K, V]{
		m:       make(map[K]*entry[K, V], opts.Capacity),
		cap:     opts.Capacity,
		maxCost: opts.MaxCost,
		costFn:  opts.Cost,
		onEvict: opts.OnEvict,
	}
	s.tr = pol.Bind(recency[K, V]{s: s})
	return s, nil
}

// MustNew is New for configurations known to be valid; it panics on error.
func MustNew[K comparable, V any](opts Options[K, V]) *Store[K, V] {
	s, err := New(opts)
	if err != nil {
		panic(err)
	}
	return s
}

// Insert stores v under k, replacing any previous value, then evicts until
// the store fits its limits. The new entry itself may be evicted when its
// cost alone exceeds MaxCost.
func (s *Store[K, V]) Insert(k K, v V) {
	if e, ok := s.m[k]; ok {
		c := s.costOf(v)
		e.val = v
		s.cost += c - e.cost
		e.cost = c
		s.tr.Replace(e)
		s.enforceLimits()
		return
	}

	e := &entry[K, V]{key: k, val: v, cost: s.costOf(v)}
	s.m[k] = e
	if victim := s.tr.Admit(e); victim != nil {
		s.evict(victim.(*entry[K, V]), EvictPolicy)
	}
	s.enforceLimits()
}

// Get returns the value stored for k and records the use with the policy.
func (s *Store[K, V]) Get(k K) (V, bool) {
	e, ok := s.m[k]
	if !ok {
		var zero V
		return zero, false
	}
	s.tr.Touch(e)
	return e.val, true
}

// Len returns the number of resident entries.
func (s *Store[K, V]) Len() int { return s.len }

// Cost returns the total cost of resident entries.
func (s *Store[K, V]) Cost() int64 { return s.cost }

// Evictions returns how many entries have been dropped so far.
func (s *Store[K, V]) Evictions() uint64 { return s.evicts }

// Keys returns the resident keys from most to least recent.
func (s *Store[K, V]) Keys() []K {
	out := make([]K, 0, s.len)
	for e := s.head; e != nil; e = e.next {
		out = append(out, e.key)
	}
	return out
}

func (s *Store[K, V]) costOf(v V) int64 {
	if s.costFn == nil {
		return 1
	}
	return s.costFn(v)
}

// -------------------- list internals --------------------

func (s *Store[K, V]) pushFront(e *entry[K, V]) {
	e.prev = nil
	e.next = s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
	s.len++
	s.cost += e.cost
}

func (s *Store[K, V]) moveToFront(e *entry[K, V]) {
	if e == s.head {
		return
	}
	s.detach(e)
	e.next = s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

// unlink removes e from the list and its counters.
func (s *Store[K, V]) unlink(e *entry[K, V]) {
	s.detach(e)
	s.len--
	s.cost -= e.cost
	if s.cost < 0 {
		s.cost = 0
	}
}

func (s *Store[K, V]) detach(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	if s.head == e {
		s.head = e.next
	}
	if s.tail == e {
		s.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (s *Store[K, V]) evict(e *entry[K, V], reason EvictReason) {
	s.tr.Forget(e)
	s.unlink(e)
	delete(s.m, e.key)
	s.evicts++
	if s.onEvict != nil {
		s.onEvict(e.key, e.val, reason)
	}
}

// enforceLimits trims from the tail until count and cost both fit.
func (s *Store[K, V]) enforceLimits() {
	for s.len > s.cap && s.tail != nil {
		s.evict(s.tail, EvictCapacity)
	}
	if s.maxCost <= 0 {
		return
	}
	for s.cost > s.maxCost && s.tail != nil {
		s.evict(s.tail, EvictCost)
	}
}

// recency adapts the store's list to policy.List.
type recency[K comparable, V any] struct{ s *Store[K, V] }

var _ policy.List[int, int] = recency[int, int]{}

func (r recency[K, V]) PushFront(e policy.Entry[K, V]) { r.s.pushFront(e.(*entry[K, V])) }
func (r recency[K, V]) MoveToFront(e policy.Entry[K, V]) { r.s.moveToFront(e.(*entry[K, V])) }
