package store

import (
	"cmp"
	"fmt"
	"reflect"
)

// naturalLess returns cmp.Less for Q when Q's underlying type is ordered.
// Named types (type UserID int64) fall back to comparing through reflect.
// It panics if Q has no natural order.
func naturalLess[Q any]() func(a, b Q) bool {
	for _, less := range []any{
		cmp.Less[int], cmp.Less[int64], cmp.Less[uint], cmp.Less[uint64],
		cmp.Less[string], cmp.Less[float64],
	} {
		if fn, ok := less.(func(a, b Q) bool); ok {
			return fn
		}
	}

	switch t := reflect.TypeFor[Q](); t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b Q) bool { return reflect.ValueOf(a).Int() < reflect.ValueOf(b).Int() }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, b Q) bool { return reflect.ValueOf(a).Uint() < reflect.ValueOf(b).Uint() }
	case reflect.Float32, reflect.Float64:
		return func(a, b Q) bool { return cmp.Less(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float()) }
	case reflect.String:
		return func(a, b Q) bool { return reflect.ValueOf(a).String() < reflect.ValueOf(b).String() }
	default:
		panic(fmt.Sprintf("store: %v has no natural order; build the Tree with NewTreeFunc", t))
	}
}
