package store

// Admitting wraps a backend and only inserts values accepted by a predicate.
// Rejected values are dropped silently; to a caller this is
// indistinguishable from a value that was cached and evicted at once.
//
// The zero value admits everything into a hash map indexed like a zero Map.
// Its query views must be comparable at run time.
//
// Typical use is caching only successful outcomes:
//
//	store.AdmitMap[string](memo.Result[int].OK)
type Admitting[K, Q, R any] struct {
	inner Backend[K, Q, R]
	admit func(R) bool
}

// Admit wraps inner so that Insert keeps only values for which admit
// returns true.
func Admit[K, Q, R any](inner Backend[K, Q, R], admit func(R) bool) *Admitting[K, Q, R] {
	return &Admitting[K, Q, R]{inner: inner, admit: admit}
}

// AdmitMap is Admit over a fresh exact-match Map.
func AdmitMap[K comparable, R any](admit func(R) bool) *Admitting[K, K, R] {
	return Admit[K, K, R](NewMap[K, R](), admit)
}

// Insert forwards key and value to the inner store if value is admitted.
func (a *Admitting[K, Q, R]) Insert(key K, value R) {
	if a.admit != nil && !a.admit(value) {
		return
	}
	if a.inner == nil {
		a.inner = &anyMap[K, Q, R]{m: make(map[any]R), view: zeroView[K, Q]()}
	}
	a.inner.Insert(key, value)
}

// Get forwards to the inner store.
func (a *Admitting[K, Q, R]) Get(query Q) (R, bool) {
	if a.inner == nil {
		var zero R
		return zero, false
	}
	return a.inner.Get(query)
}

// Inner returns the wrapped store.
func (a *Admitting[K, Q, R]) Inner() Backend[K, Q, R] { return a.inner }

// anyMap backs a zero Admitting, whose Q carries no comparable constraint.
type anyMap[K, Q, R any] struct {
	m    map[any]R
	view func(K) Q
}

func (s *anyMap[K, Q, R]) Insert(key K, value R) { s.m[s.view(key)] = value }

func (s *anyMap[K, Q, R]) Get(query Q) (R, bool) {
	v, ok := s.m[query]
	return v, ok
}
