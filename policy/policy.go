// Package policy defines the eviction contract between store/bounded and its
// pluggable replacement policies.
package policy

// Entry is a resident entry as a policy sees it. Entries are compared by
// identity; the key lets a policy remember an entry after it is gone.
type Entry[K comparable, V any] interface {
	Key() K
}

// List is the bounded store's recency list, front = most recent.
// Every operation is O(1). The list only links entries; the store owns the
// key index, unlinks departing entries and trims from the back.
//
// Concurrency: policies call List methods only from inside Tracker methods,
// which the store already serializes.
type List[K comparable, V any] interface {
	// PushFront links a newly admitted entry at the front.
	PushFront(Entry[K, V])
	// MoveToFront makes a resident entry the most recent.
	MoveToFront(Entry[K, V])
}

// Tracker is a policy instance bound to one store's List.
//
//   - Admit links a new entry and may name a victim. The store evicts the
//     victim and then calls Forget for it.
//   - Touch and Replace record use of a resident entry (a hit or an
//     overwrite).
//   - Forget tells the policy an entry is gone so it can update its own
//     bookkeeping. The store does the unlinking.
type Tracker[K comparable, V any] interface {
	Admit(Entry[K, V]) (victim Entry[K, V])
	Touch(Entry[K, V])
	Replace(Entry[K, V])
	Forget(Entry[K, V])
}

// Policy creates trackers bound to a store's list.
type Policy[K comparable, V any] interface {
	Bind(List[K, V]) Tracker[K, V]
}
