package memo

import (
	"fmt"
	"reflect"
)

// Store is the contract every memoization backend satisfies.
// Implementations need not be safe for concurrent use: the runtime calls
// Insert and Get only while holding the owning slot's lock.
type Store[K, Q, R any] interface {
	// Insert records value under key. Baseline backends replace any previous
	// value. A backend may decline to keep the value; refusal is silent.
	Insert(key K, value R)

	// Get looks up query, a view of the key that may be cheaper to build
	// than the key itself. It returns the stored value without cloning it.
	Get(query Q) (R, bool)
}

// Cloner lets a result decide how it is duplicated when the runtime hands a
// cached value to a caller. Results that do not implement Cloner are copied
// with ordinary Go assignment.
type Cloner[R any] interface {
	Clone() R
}

// Initializer is an optional hook for stores built by Default. Init runs
// once, right after the store is allocated.
type Initializer interface {
	Init()
}

// Instantiation identifies one family of invocations at a call site:
// the key type and the result type bound at that invocation.
// A non-generic function always has the same instantiation.
type Instantiation struct {
	Key    reflect.Type
	Result reflect.Type
}

// InstantiationOf returns the instantiation for key type K and result type R.
func InstantiationOf[K, R any]() Instantiation {
	return Instantiation{Key: reflect.TypeFor[K](), Result: reflect.TypeFor[R]()}
}

func (i Instantiation) String() string {
	return fmt.Sprintf("(%v, %v)", i.Key, i.Result)
}

// Default constructs a store of type S without an explicit initializer.
// Pointer types get a freshly allocated zero value, other types their zero
// value. The zero value must be ready to use; if it implements Initializer,
// Init is called before the store is returned.
//
// Default panics for interface types, which have no constructible zero value.
func Default[S any]() S {
	var s S
	switch t := reflect.TypeFor[S](); t.Kind() {
	case reflect.Interface:
		panic(fmt.Sprintf("memo: cannot default-construct store of interface type %v; pass an initializer", t))
	case reflect.Pointer:
		s = reflect.New(t.Elem()).Interface().(S)
	}
	if in, ok := any(s).(Initializer); ok {
		in.Init()
	}
	return s
}

// clone duplicates r for a caller while the store keeps its own copy.
func clone[R any](r R) R {
	if c, ok := any(r).(Cloner[R]); ok {
		return c.Clone()
	}
	return r
}
