package tinylfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/IvanBrykalov/sitememo/memo"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newStore[K string | int, V any](t *testing.T, cfg Config[V]) *Store[K, V] {
	t.Helper()
	s, err := New[K, V](cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestStore_InsertThenGet(t *testing.T) {
	t.Parallel()

	s := newStore[string, int](t, Config[int]{MaxCost: 100})
	s.Insert("a", 1)
	v, ok := s.Get("a")
	require.True(t, ok, "synchronous Insert must be visible to the next Get")
	assert.Equal(t, 1, v)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	st := s.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
}

func TestStore_ReplaceValue(t *testing.T) {
	t.Parallel()

	s := newStore[int, string](t, Config[string]{MaxCost: 100})
	s.Insert(1, "x")
	s.Insert(1, "y")
	v, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "y", v)
}

// The total cost stays bounded no matter how much is offered.
func TestStore_BoundedByCost(t *testing.T) {
	t.Parallel()

	const maxCost = 16
	s := newStore[int, int](t, Config[int]{MaxCost: maxCost})
	for i := 0; i < 1_000; i++ {
		s.Insert(i, i)
	}
	resident := 0
	for i := 0; i < 1_000; i++ {
		if _, ok := s.Get(i); ok {
			resident++
		}
	}
	assert.LessOrEqual(t, resident, maxCost)
}

func TestStore_CustomCost(t *testing.T) {
	t.Parallel()

	s := newStore[string, []byte](t, Config[[]byte]{
		MaxCost: 8,
		Cost:    func(b []byte) int64 { return int64(len(b)) },
	})
	s.Insert("too-big", make([]byte, 64))
	_, ok := s.Get("too-big")
	assert.False(t, ok, "an entry costlier than MaxCost must be refused")
}

func TestStore_WithMemo(t *testing.T) {
	t.Parallel()

	var owned *Store[string, int]
	t.Cleanup(func() {
		if owned != nil {
			owned.Close()
		}
	})

	site := memo.NewRegistry().At("tinylfu.len")
	calls := 0
	strlen := func(s string) int {
		return memo.CallWith(site, s, func() *Store[string, int] {
			st, err := New[string, int](Config[int]{MaxCost: 1024})
			if err != nil {
				panic(err)
			}
			owned = st
			return st
		}, func() int {
			calls++
			return len(s)
		})
	}

	assert.Equal(t, 5, strlen("hello"))
	assert.Equal(t, 5, strlen("hello"))
	assert.Equal(t, 1, calls)
}
