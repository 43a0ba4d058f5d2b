package bounded

import (
	"errors"

	"github.com/IvanBrykalov/sitememo/policy"
)

// ErrInvalidCapacity is returned by New when Capacity is not positive.
var ErrInvalidCapacity = errors.New("bounded: capacity must be positive")

// EvictReason explains why an entry was dropped.
type EvictReason int

const (
	// EvictPolicy: the replacement policy named the entry as a victim.
	EvictPolicy EvictReason = iota
	// EvictCapacity: dropped to get back under Capacity.
	EvictCapacity
	// EvictCost: dropped to get back under MaxCost.
	EvictCost
)

func (r EvictReason) String() string {
	switch r {
	case EvictPolicy:
		return "policy"
	case EvictCapacity:
		return "capacity"
	case EvictCost:
		return "cost"
	default:
		return "unknown"
	}
}

// Options configures a bounded store. Zero values are safe except Capacity;
// defaults are applied in New:
//   - nil Policy  => LRU
//   - nil Cost    => every entry costs 1
//   - MaxCost 0   => no cost limit
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit.
	Capacity int

	// Policy picks which entries go first; nil => LRU.
	Policy policy.Policy[K, V]

	// Cost-based limiting (e.g. bytes). The store evicts until both the
	// entry count and the total cost fit.
	Cost    func(v V) int64
	MaxCost int64

	// OnEvict is called for every dropped entry. It runs inside Insert,
	// under the memo slot lock; keep it light and do not call back into the
	// same site.
	OnEvict func(k K, v V, reason EvictReason)
}
