package memo

import "github.com/IvanBrykalov/sitememo/store"

// Result is the memoizable outcome of a computation that can fail.
// Pair it with an admitting store to cache only successes:
//
//	store.AdmitMap[K](memo.Result[T].OK)
type Result[T any] struct {
	Value T
	Err   error
}

// Try packs a (value, error) return into a Result.
func Try[T any](v T, err error) Result[T] { return Result[T]{Value: v, Err: err} }

// OK reports whether the computation succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Unwrap returns the value and error.
func (r Result[T]) Unwrap() (T, error) { return r.Value, r.Err }

// Clone duplicates the value when T implements Cloner.
func (r Result[T]) Clone() Result[T] {
	return Result[T]{Value: clone(r.Value), Err: r.Err}
}

// admitOK builds the store FuncErr uses: an exact-match map that keeps only
// successful results.
func admitOK[K comparable, R any]() *store.Admitting[K, K, Result[R]] {
	return store.AdmitMap[K](Result[R].OK)
}
