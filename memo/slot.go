package memo

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// slot owns exactly one store for one (site, instantiation) pair.
// The store lives behind an interface value; typ records the dynamic type it
// was created with so every typed access can be checked.
type slot struct {
	inst  Instantiation
	typ   reflect.Type
	store any // immutable after creation

	// ---- guarded by mu ----
	mu       sync.Mutex
	poisoned bool
	flight   any // *singleflight.Group[K, R], created by CallOnce
}

func newSlot(inst Instantiation, store any) *slot {
	return &slot{inst: inst, typ: reflect.TypeOf(store), store: store}
}

// access recovers the concrete store of sl as S. The assertion cannot fail
// while every caller of a site agrees on the store type for an
// instantiation; if it does, the caller has a bug and access panics.
func access[S any](site *Site, sl *slot) S {
	st, ok := sl.store.(S)
	if !ok {
		panic(&TypeMismatchError{
			Site:          site.name,
			Instantiation: sl.inst,
			Created:       sl.typ,
			Requested:     reflect.TypeFor[S](),
		})
	}
	return st
}

// guard runs fn with the slot locked. A panic unwinding out of fn leaves the
// slot poisoned and is re-raised; every later guard call panics.
func (sl *slot) guard(site *Site, fn func()) {
	sl.mu.Lock()
	if sl.poisoned {
		sl.mu.Unlock()
		panic(poisoned("store", site.name))
	}
	done := false
	defer func() {
		if !done {
			sl.poisoned = true
			site.reg.logger.Error("memo: store poisoned",
				zap.String("site", site.name),
				zap.Stringer("instantiation", sl.inst),
				zap.Stringer("store_type", sl.typ))
		}
		sl.mu.Unlock()
	}()
	fn()
	done = true
}
