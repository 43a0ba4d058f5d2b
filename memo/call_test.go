package memo_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/sitememo/memo"
	"github.com/IvanBrykalov/sitememo/store"
)

// f(a, b) = b + 4 memoized on b: the first call computes, later calls with
// the same b return the cached value whatever a is.
func TestCall_KeyedOnOneArgument(t *testing.T) {
	t.Parallel()

	site := memo.NewRegistry().At("test.f")
	calls := 0
	f := func(_ bool, b uint) uint {
		return memo.Call(site, b, func() uint {
			calls++
			return b + 4
		})
	}

	assert.Equal(t, uint(6), f(false, 2))
	assert.Equal(t, uint(6), f(true, 2))
	assert.Equal(t, uint(6), f(false, 2))
	assert.Equal(t, 1, calls)

	assert.Equal(t, uint(7), f(false, 3))
	assert.Equal(t, 2, calls)
}

// Repeating a call with the same key never recomputes.
func TestCall_DeterministicOnRepeat(t *testing.T) {
	t.Parallel()

	site := memo.NewRegistry().At("test.square")
	calls := 0
	square := func(n int) int {
		return memo.Call(site, n, func() int {
			calls++
			return n * n
		})
	}

	for n := 0; n < 50; n++ {
		first := square(n)
		second := square(n)
		require.Equal(t, first, second)
	}
	assert.Equal(t, 50, calls)
}

func wrap[R any](site *memo.Site, key int, mk func() R) R {
	return memo.Call(site, key, mk)
}

// One site used at two instantiations keeps two independent stores, even for
// equal keys.
func TestCall_PerInstantiationIsolation(t *testing.T) {
	t.Parallel()

	site := memo.NewRegistry().At("test.wrap")

	assert.Equal(t, 10, wrap(site, 1, func() int { return 10 }))
	assert.Equal(t, "x", wrap(site, 1, func() string { return "x" }))

	// both are now cached; a different computation must not be consulted
	assert.Equal(t, 10, wrap(site, 1, func() int { return -1 }))
	assert.Equal(t, "x", wrap(site, 1, func() string { return "other" }))

	st := site.Stats()
	assert.Equal(t, 2, st.Slots)
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(2), st.Misses)
	assert.Len(t, site.Instantiations(), 2)
}

type holder[T comparable] struct{ a T }

// pairWith mirrors a generic method keyed by (receiver field, argument).
func pairWith[T, U comparable](site *memo.Site, h holder[T], b U) memo.Pair[T, U] {
	return memo.Call(site, memo.Key2(h.a, b), func() memo.Pair[T, U] {
		return memo.Pair[T, U]{First: h.a, Second: b}
	})
}

func TestCall_GenericReceiver(t *testing.T) {
	t.Parallel()

	site := memo.NewRegistry().At("test.holder.pairWith")
	h := holder[bool]{a: false}

	assert.Equal(t, memo.Pair[bool, int]{First: false, Second: 4}, pairWith(site, h, 4))
	assert.Equal(t, memo.Pair[bool, string]{First: false, Second: "foo"}, pairWith(site, h, "foo"))
	assert.Equal(t, 2, site.Stats().Slots)
}

// mayFail fails on even input and returns input % 2 otherwise. Only
// successful outcomes are admitted into its store.
func mayFail(site *memo.Site, calls *int, input uint) (uint, error) {
	return memo.CallWith(site, input, func() *store.Admitting[uint, uint, memo.Result[uint]] {
		return store.AdmitMap[uint](memo.Result[uint].OK)
	}, func() memo.Result[uint] {
		*calls++
		if input%2 == 0 {
			return memo.Try(uint(0), errors.New("even input"))
		}
		return memo.Try(input%2, nil)
	}).Unwrap()
}

func TestCallWith_ConditionalAdmission(t *testing.T) {
	t.Parallel()

	site := memo.NewRegistry().At("test.mayFail")
	calls := 0

	_, err := mayFail(site, &calls, 2)
	require.Error(t, err)
	_, err = mayFail(site, &calls, 2)
	require.Error(t, err)
	assert.Equal(t, 2, calls, "failures must not be cached")

	v, err := mayFail(site, &calls, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	v, err = mayFail(site, &calls, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.Equal(t, 3, calls, "success must be cached")
}

// countingStore is a store whose zero value is usable; Init counts how many
// times it was default-constructed.
type countingStore struct {
	inits   int
	inserts int
	m       map[uint]uint
}

var defaultInits int

func (s *countingStore) Init() {
	defaultInits++
	s.inits++
	s.m = make(map[uint]uint)
}

func (s *countingStore) Insert(k, v uint) { s.inserts++; s.m[k] = v }

func (s *countingStore) Get(k uint) (uint, bool) {
	v, ok := s.m[k]
	return v, ok
}

// Without an initializer the store type's default construction is used.
func TestCallWith_DefaultConstruction(t *testing.T) {
	site := memo.NewRegistry().At("test.defaultInit")
	before := defaultInits

	f := func(in uint) uint {
		return memo.CallWith[uint, uint, *countingStore](site, in, nil, func() uint { return in })
	}
	assert.Equal(t, uint(2), f(2))
	assert.Equal(t, uint(2), f(2))
	assert.Equal(t, uint(5), f(5))
	assert.Equal(t, 1, defaultInits-before)
}

// An explicit initializer replaces default construction. If it panics, the
// panic fires exactly once at first use and the entry is poisoned after.
func TestCallWith_ExplicitInitPanicsOnce(t *testing.T) {
	site := memo.NewRegistry().At("test.panickingInit")
	before := defaultInits
	runs := 0

	f := func() uint {
		return memo.CallWith(site, uint(0), func() *countingStore {
			runs++
			panic("store_init executed")
		}, func() uint { return 0 })
	}

	assert.PanicsWithValue(t, "store_init executed", func() { f() })
	assert.Equal(t, 1, runs)

	defer func() {
		r := recover()
		err, ok := r.(error)
		require.True(t, ok, "want error panic, got %v", r)
		assert.ErrorIs(t, err, memo.ErrPoisoned)
		assert.Equal(t, 1, runs, "initializer must not run again")
		assert.Equal(t, 0, defaultInits-before, "default construction must not be used")
	}()
	f()
}

// The store type is inferred from the initializer alone.
func TestCallWith_InferredFromInit(t *testing.T) {
	t.Parallel()

	site := memo.NewRegistry().At("test.tree")
	ident := func(n int) int {
		return memo.CallWith(site, n, store.NewTree[int, int], func() int { return n })
	}
	for i := 0; i < 10; i++ {
		require.Equal(t, i, ident(i))
	}
	assert.Equal(t, int64(10), site.Stats().Inserts)
}

// userKey is not comparable; lookups go through its ID.
type userKey struct {
	ID    string
	Roles []string
}

func (k userKey) Borrow() string { return k.ID }

// CallIn looks up by a borrowed view and only uses the full key on a miss.
func TestCallIn_BorrowedQuery(t *testing.T) {
	t.Parallel()

	site := memo.NewRegistry().At("test.roles")
	keysBuilt := 0
	describe := func(id string) string {
		return memo.CallIn(site, userKey{ID: id}, id, store.NewBorrowMap[userKey, string, string], func() string {
			keysBuilt++
			return strings.ToUpper(id)
		})
	}

	assert.Equal(t, "ALICE", describe("alice"))
	assert.Equal(t, "ALICE", describe("alice"))
	assert.Equal(t, "BOB", describe("bob"))
	assert.Equal(t, 2, keysBuilt)
}

// Every baseline backend is usable when the initializer is omitted, for
// exact and for borrowed lookups.
func TestCall_DefaultConstructedBackends(t *testing.T) {
	t.Parallel()

	square := func(n int, computed *int) func() int {
		return func() int { *computed++; return n * n }
	}
	upper := func(id string, computed *int) func() string {
		return func() string { *computed++; return strings.ToUpper(id) }
	}

	exact := map[string]func(site *memo.Site, n int, computed *int) int{
		"map": func(site *memo.Site, n int, computed *int) int {
			return memo.CallWith[int, int, *store.Map[int, int, int]](site, n, nil, square(n, computed))
		},
		"tree": func(site *memo.Site, n int, computed *int) int {
			return memo.CallWith[int, int, *store.Tree[int, int, int]](site, n, nil, square(n, computed))
		},
		"admitting": func(site *memo.Site, n int, computed *int) int {
			return memo.CallWith[int, int, *store.Admitting[int, int, int]](site, n, nil, square(n, computed))
		},
	}
	for name, call := range exact {
		t.Run("exact/"+name, func(t *testing.T) {
			site := memo.NewRegistry().At("test.default." + name)
			computed := 0
			assert.Equal(t, 9, call(site, 3, &computed))
			assert.Equal(t, 9, call(site, 3, &computed))
			assert.Equal(t, 49, call(site, 7, &computed))
			assert.Equal(t, 2, computed)

			st := site.Stats()
			assert.Equal(t, int64(1), st.Hits)
			assert.Equal(t, int64(2), st.Misses)
		})
	}

	borrowed := map[string]func(site *memo.Site, id string, computed *int) string{
		"map": func(site *memo.Site, id string, computed *int) string {
			return memo.CallIn[userKey, string, string, *store.Map[userKey, string, string]](
				site, userKey{ID: id}, id, nil, upper(id, computed))
		},
		"tree": func(site *memo.Site, id string, computed *int) string {
			return memo.CallIn[userKey, string, string, *store.Tree[userKey, string, string]](
				site, userKey{ID: id}, id, nil, upper(id, computed))
		},
		"admitting": func(site *memo.Site, id string, computed *int) string {
			return memo.CallIn[userKey, string, string, *store.Admitting[userKey, string, string]](
				site, userKey{ID: id}, id, nil, upper(id, computed))
		},
	}
	for name, call := range borrowed {
		t.Run("borrowed/"+name, func(t *testing.T) {
			site := memo.NewRegistry().At("test.default.borrowed." + name)
			computed := 0
			assert.Equal(t, "ALICE", call(site, "alice", &computed))
			assert.Equal(t, "ALICE", call(site, "alice", &computed))
			assert.Equal(t, "BOB", call(site, "bob", &computed))
			assert.Equal(t, "BOB", call(site, "bob", &computed))
			assert.Equal(t, 2, computed, "alice and bob must not share an entry")
		})
	}
}

// Two call paths disagreeing on the store type for one instantiation is a
// programming error.
func TestCallWith_StoreTypeMismatchPanics(t *testing.T) {
	t.Parallel()

	site := memo.NewRegistry().At("test.mismatch")
	memo.CallWith(site, 1, store.NewMap[int, int], func() int { return 1 })

	defer func() {
		var tm *memo.TypeMismatchError
		err, _ := recover().(error)
		require.ErrorAs(t, err, &tm)
		assert.Equal(t, "test.mismatch", tm.Site)
		assert.Contains(t, tm.Error(), "*store.Tree")
	}()
	memo.CallWith(site, 1, store.NewTree[int, int], func() int { return 1 })
}

type explodingStore struct{ store.Map[int, int, int] }

func (s *explodingStore) Insert(int, int) { panic("insert failed") }

// A panic inside a store method poisons the slot for good.
func TestCall_StorePanicPoisonsSlot(t *testing.T) {
	t.Parallel()

	site := memo.NewRegistry().At("test.exploding")
	call := func() int {
		return memo.CallWith[int, int, *explodingStore](site, 1, nil, func() int { return 1 })
	}

	assert.PanicsWithValue(t, "insert failed", func() { call() })
	assert.Panics(t, func() { call() })

	defer func() {
		err, _ := recover().(error)
		assert.ErrorIs(t, err, memo.ErrPoisoned)
	}()
	call()
}

// A panic in the computation propagates without poisoning anything.
func TestCall_ComputePanicDoesNotPoison(t *testing.T) {
	t.Parallel()

	site := memo.NewRegistry().At("test.computePanic")
	assert.Panics(t, func() {
		memo.Call(site, "k", func() int { panic("compute failed") })
	})
	assert.Equal(t, 7, memo.Call(site, "k", func() int { return 7 }))
	assert.Equal(t, 7, memo.Call(site, "k", func() int { return 8 }))
}

type buffer struct{ b []byte }

var clones int

func (b buffer) Clone() buffer {
	clones++
	return buffer{b: append([]byte(nil), b.b...)}
}

// Results implementing Cloner are cloned on insert and on every hit, so
// callers never alias the stored value.
func TestCall_ClonesResults(t *testing.T) {
	site := memo.NewRegistry().At("test.clone")
	before := clones

	first := memo.Call(site, 1, func() buffer { return buffer{b: []byte("abc")} })
	first.b[0] = 'X'
	second := memo.Call(site, 1, func() buffer { return buffer{} })

	assert.Equal(t, "abc", string(second.b))
	assert.Equal(t, 2, clones-before)
}
