package bounded

// entry is an intrusive list element: the key and value plus the recency
// links and the cost charged for it.
type entry[K comparable, V any] struct {
	key K
	val V

	// front = most recent
	prev *entry[K, V]
	next *entry[K, V]

	cost int64
}

func (e *entry[K, V]) Key() K { return e.key }
