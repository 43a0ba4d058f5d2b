// Package store provides the baseline memoization backends: an exact-match
// hash map and an ordered B-tree, plus a wrapper that filters which results
// are admitted.
//
// Every backend implements memo.Store: Insert(K, R) and Get(Q) (R, bool).
// Q is the query type. For the plain constructors Q is K itself; the
// Borrow variants accept keys that implement Borrower[Q] so callers can query
// the cache with a cheap view instead of building a full key.
//
// Backends are not safe for concurrent use on their own. The memo runtime
// serializes access through the owning slot's lock.
package store

import "reflect"

// Borrower is implemented by keys that can be looked up through a lighter
// view of themselves. The view is the index of Borrow-constructed stores, so
// it must identify the key: equal keys return equal views and distinct keys
// return distinct views. Keys whose views collide overwrite each other. For
// ordered backends the views must also sort the same way as the keys.
type Borrower[Q any] interface {
	Borrow() Q
}

// Backend is the shape shared by every store in this package and accepted by
// Admit. It matches memo.Store.
type Backend[K, Q, R any] interface {
	Insert(key K, value R)
	Get(query Q) (R, bool)
}

// borrow is the key-to-query projection used by Borrow-constructed stores.
func borrow[K Borrower[Q], Q any](k K) Q { return k.Borrow() }

// identity projects a key onto itself when K and Q are the same type.
func identity[K, Q any](k K) Q { return any(k).(Q) }

// zeroView is the projection used by zero-value stores, which have no
// constructor to pick one: Borrow when K implements Borrower[Q], identity
// otherwise.
func zeroView[K, Q any]() func(K) Q {
	if reflect.TypeFor[K]().Implements(reflect.TypeFor[Borrower[Q]]()) {
		return func(k K) Q { return any(k).(Borrower[Q]).Borrow() }
	}
	return identity[K, Q]
}
