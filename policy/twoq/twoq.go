// Package twoq implements the 2Q replacement policy.
package twoq

import (
	"container/list"

	"github.com/IvanBrykalov/sitememo/policy"
)

// tracker splits residents into a probation queue (A1in) for entries seen
// once and the main queue (Am) for entries used again. Keys recently evicted
// from probation are remembered in a ghost queue (A1out); a key that comes
// back while still a ghost skips probation.
//
// Am has no list of its own: it is every resident entry not indexed in
// probIdx, ordered by the store's list.
type tracker[K comparable, V any] struct {
	l policy.List[K, V]

	probCap  int
	ghostCap int

	// A1in, front = newest
	prob    *list.List
	probIdx map[policy.Entry[K, V]]*list.Element

	// A1out, keys only, front = newest
	ghosts   *list.List
	ghostIdx map[K]*list.Element
}

type twoQPolicy[K comparable, V any] struct {
	probCap  int
	ghostCap int
}

// New returns a 2Q policy with the given probation and ghost queue sizes.
// Both are clamped to at least 1.
func New[K comparable, V any](probation, ghosts int) policy.Policy[K, V] {
	return twoQPolicy[K, V]{probCap: max(probation, 1), ghostCap: max(ghosts, 1)}
}

// Sized returns a 2Q policy tuned for a store holding capacity entries:
// probation gets a quarter of it and the ghost queue half.
func Sized[K comparable, V any](capacity int) policy.Policy[K, V] {
	return New[K, V](capacity/4, capacity/2)
}

func (p twoQPolicy[K, V]) Bind(l policy.List[K, V]) policy.Tracker[K, V] {
	return &tracker[K, V]{
		l:        l,
		probCap:  p.probCap,
		ghostCap: p.ghostCap,
		prob:     list.New(),
		probIdx:  make(map[policy.Entry[K, V]]*list.Element),
		ghosts:   list.New(),
		ghostIdx: make(map[K]*list.Element),
	}
}

// Admit puts a returning ghost straight into Am and anything else on
// probation. When probation overflows its oldest entry is the victim.
func (t *tracker[K, V]) Admit(e policy.Entry[K, V]) policy.Entry[K, V] {
	k := e.Key()
	if g, ok := t.ghostIdx[k]; ok {
		t.ghosts.Remove(g)
		delete(t.ghostIdx, k)
		t.l.PushFront(e)
		return nil
	}

	t.l.PushFront(e)
	t.probIdx[e] = t.prob.PushFront(e)
	if t.prob.Len() > t.probCap {
		return t.prob.Back().Value.(policy.Entry[K, V])
	}
	return nil
}

// Touch promotes a probation entry into Am.
func (t *tracker[K, V]) Touch(e policy.Entry[K, V]) {
	if el, ok := t.probIdx[e]; ok {
		t.prob.Remove(el)
		delete(t.probIdx, e)
	}
	t.l.MoveToFront(e)
}

func (t *tracker[K, V]) Replace(e policy.Entry[K, V]) { t.Touch(e) }

// Forget turns an entry leaving probation into a ghost. Entries leaving Am
// are not remembered.
func (t *tracker[K, V]) Forget(e policy.Entry[K, V]) {
	el, ok := t.probIdx[e]
	if !ok {
		return
	}
	t.prob.Remove(el)
	delete(t.probIdx, e)

	k := e.Key()
	if old := t.ghostIdx[k]; old != nil {
		t.ghosts.Remove(old)
	}
	t.ghostIdx[k] = t.ghosts.PushFront(k)
	for t.ghosts.Len() > t.ghostCap {
		oldest := t.ghosts.Back()
		delete(t.ghostIdx, oldest.Value.(K))
		t.ghosts.Remove(oldest)
	}
}
