package store

import (
	"cmp"

	"github.com/google/btree"
)

// treeDegree is the B-tree branching factor. 32 keeps nodes around a few
// cache lines for small keys.
const treeDegree = 32

// Tree is the ordered backend: a B-tree of entries sorted by query view.
// Insert and Get are O(log n). Key order is canonical, so the stored entries
// can be inspected by range with Ascend and AscendRange.
//
// The zero value is ready to use when the query type is naturally ordered
// (integers, floats, strings and types defined on them). It sorts by the key
// itself, or by K.Borrow() when K implements Borrower[Q]. The tree is
// allocated on the first Insert; until then every lookup misses.
type Tree[K, Q, R any] struct {
	bt   *btree.BTreeG[treeItem[K, Q, R]]
	view func(K) Q
}

type treeItem[K, Q, R any] struct {
	q   Q
	key K
	val R
}

// NewTree returns an ordered store for naturally ordered keys.
func NewTree[K cmp.Ordered, R any]() *Tree[K, K, R] {
	return newTree[K, K, R](identity[K, K], cmp.Less[K])
}

// NewTreeFunc returns an ordered store whose keys are sorted by less.
// less must define a strict weak ordering.
func NewTreeFunc[K, R any](less func(a, b K) bool) *Tree[K, K, R] {
	return newTree[K, K, R](identity[K, K], less)
}

// NewBorrowTree returns an ordered store keyed by K and queried by the view
// K.Borrow() returns.
func NewBorrowTree[K Borrower[Q], Q cmp.Ordered, R any]() *Tree[K, Q, R] {
	return newTree[K, Q, R](borrow[K, Q], cmp.Less[Q])
}

func newTree[K, Q, R any](view func(K) Q, less func(a, b Q) bool) *Tree[K, Q, R] {
	return &Tree[K, Q, R]{
		bt: btree.NewG(treeDegree, func(a, b treeItem[K, Q, R]) bool {
			return less(a.q, b.q)
		}),
		view: view,
	}
}

// Insert stores value under key, replacing any previous value.
func (t *Tree[K, Q, R]) Insert(key K, value R) {
	if t.bt == nil {
		*t = *newTree[K, Q, R](zeroView[K, Q](), naturalLess[Q]())
	}
	t.bt.ReplaceOrInsert(treeItem[K, Q, R]{q: t.view(key), key: key, val: value})
}

// Get returns the value stored for query.
func (t *Tree[K, Q, R]) Get(query Q) (R, bool) {
	if t.bt == nil {
		var zero R
		return zero, false
	}
	it, ok := t.bt.Get(treeItem[K, Q, R]{q: query})
	return it.val, ok
}

// Len returns the number of stored entries.
func (t *Tree[K, Q, R]) Len() int {
	if t.bt == nil {
		return 0
	}
	return t.bt.Len()
}

// Ascend calls fn for every entry in key order until fn returns false.
func (t *Tree[K, Q, R]) Ascend(fn func(key K, value R) bool) {
	if t.bt == nil {
		return
	}
	t.bt.Ascend(func(it treeItem[K, Q, R]) bool { return fn(it.key, it.val) })
}

// AscendRange calls fn in key order for entries whose query view lies in
// [from, to), until fn returns false.
func (t *Tree[K, Q, R]) AscendRange(from, to Q, fn func(key K, value R) bool) {
	if t.bt == nil {
		return
	}
	t.bt.AscendRange(treeItem[K, Q, R]{q: from}, treeItem[K, Q, R]{q: to},
		func(it treeItem[K, Q, R]) bool { return fn(it.key, it.val) })
}

// Min returns the entry with the smallest key.
func (t *Tree[K, Q, R]) Min() (K, R, bool) {
	if t.bt == nil {
		var it treeItem[K, Q, R]
		return it.key, it.val, false
	}
	it, ok := t.bt.Min()
	return it.key, it.val, ok
}

// Max returns the entry with the largest key.
func (t *Tree[K, Q, R]) Max() (K, R, bool) {
	if t.bt == nil {
		var it treeItem[K, Q, R]
		return it.key, it.val, false
	}
	it, ok := t.bt.Max()
	return it.key, it.val, ok
}
