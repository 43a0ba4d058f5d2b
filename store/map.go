package store

// Map is the exact-match backend: a hash map from query view to entry.
// Insert and Get are O(1) on average; iteration order is not meaningful.
//
// The zero value is ready to use: it indexes by the key itself, or by
// K.Borrow() when K implements Borrower[Q]. That makes *Map a valid store
// type for memo calls that omit the initializer.
type Map[K any, Q comparable, R any] struct {
	m    map[Q]entry[K, R]
	view func(K) Q
}

type entry[K, R any] struct {
	key K
	val R
}

// NewMap returns an exact-match store keyed and queried by K.
func NewMap[K comparable, R any]() *Map[K, K, R] {
	return &Map[K, K, R]{m: make(map[K]entry[K, R]), view: identity[K, K]}
}

// NewBorrowMap returns an exact-match store keyed by K and queried by the
// view K.Borrow() returns.
func NewBorrowMap[K Borrower[Q], Q comparable, R any]() *Map[K, Q, R] {
	return &Map[K, Q, R]{m: make(map[Q]entry[K, R]), view: borrow[K, Q]}
}

// Insert stores value under key, replacing any previous value.
func (s *Map[K, Q, R]) Insert(key K, value R) {
	if s.m == nil {
		s.m = make(map[Q]entry[K, R])
	}
	if s.view == nil {
		s.view = zeroView[K, Q]()
	}
	s.m[s.view(key)] = entry[K, R]{key: key, val: value}
}

// Get returns the value stored for query.
func (s *Map[K, Q, R]) Get(query Q) (R, bool) {
	e, ok := s.m[query]
	return e.val, ok
}

// Len returns the number of stored entries.
func (s *Map[K, Q, R]) Len() int { return len(s.m) }

// Range calls fn for every entry until fn returns false.
func (s *Map[K, Q, R]) Range(fn func(key K, value R) bool) {
	for _, e := range s.m {
		if !fn(e.key, e.val) {
			return
		}
	}
}
