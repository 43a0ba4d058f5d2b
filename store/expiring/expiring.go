// Package expiring provides a memoization store that forgets results after a
// fixed time to live and holds at most Size of them, least recently used
// first out. It wraps github.com/hashicorp/golang-lru/v2/expirable.
//
// A store with a positive TTL runs a background goroutine that drops expired
// entries; Close stops it. Stores owned by a memo site live as long as the
// process, so Close matters mainly for tests and short-lived registries.
package expiring

import (
	"errors"
	"reflect"
	"sync"
	"time"
	"unsafe"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const maxSize = 1 << 24

var (
	// ErrInvalidSize is returned by New when Size is not in (0, 1<<24].
	ErrInvalidSize = errors.New("expiring: size must be in (0, 16777216]")
	// ErrInvalidTTL is returned by New for a negative TTL.
	ErrInvalidTTL = errors.New("expiring: TTL must not be negative")
)

// Config sizes an expiring store.
type Config struct {
	// Size is the maximum number of entries.
	Size int
	// TTL is how long an entry stays valid after it is inserted.
	// 0 means entries never expire and no goroutine is started.
	TTL time.Duration
}

// Validate reports the error New would return for c.
func (c Config) Validate() error {
	if c.Size <= 0 || c.Size > maxSize {
		return ErrInvalidSize
	}
	if c.TTL < 0 {
		return ErrInvalidTTL
	}
	return nil
}

// Store is an LRU of bounded size whose entries expire after Config.TTL.
// It is safe for concurrent use, though under memo it is always accessed
// with the slot locked.
type Store[K comparable, V any] struct {
	lru       *expirable.LRU[K, V]
	closeOnce sync.Once
}

// New builds an expiring store. onEvict, if not nil, is called for every
// entry that leaves the store, whether by expiry, by size or on Close.
func New[K comparable, V any](cfg Config, onEvict func(K, V)) (*Store[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store[K, V]{lru: expirable.NewLRU(cfg.Size, onEvict, cfg.TTL)}, nil
}

// Insert stores v under k and restarts its TTL.
func (s *Store[K, V]) Insert(k K, v V) { s.lru.Add(k, v) }

// Get returns the value for k if present and not expired.
func (s *Store[K, V]) Get(k K) (V, bool) { return s.lru.Get(k) }

// Len returns the number of entries, which may include expired entries the
// cleaner has not reached yet.
func (s *Store[K, V]) Len() int { return s.lru.Len() }

// Keys returns the keys from oldest to newest.
func (s *Store[K, V]) Keys() []K { return s.lru.Keys() }

// Close drops every entry and stops the expiry goroutine. It is idempotent.
// The store stays usable afterwards, but expired entries are then only
// dropped when looked up.
func (s *Store[K, V]) Close() {
	s.closeOnce.Do(func() {
		s.lru.Purge()
		stopCleaner(s.lru)
	})
}

// stopCleaner closes the unexported done channel of an expirable.LRU, which
// ends its cleanup goroutine. golang-lru v2.0.7 exposes no way to do this.
// It reports false if the field is missing or already closed.
// TODO: switch to the upstream Close once golang-lru ships one.
func stopCleaner(lru any) (stopped bool) {
	defer func() {
		if recover() != nil {
			stopped = false
		}
	}()

	v := reflect.ValueOf(lru)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return false
	}
	done := v.Elem().FieldByName("done")
	if !done.IsValid() || done.Type() != reflect.TypeOf(make(chan struct{})) || done.IsNil() {
		return false
	}
	close(*(*chan struct{})(unsafe.Pointer(done.UnsafeAddr())))
	return true
}
