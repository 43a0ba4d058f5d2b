package memo

// Func1 returns a memoized version of fn. key derives the cache key from the
// argument; the default exact-match store is used.
//
// The returned function may call itself recursively: no lock is held while
// fn runs.
//
//	var fib func(int) int
//	fib = memo.Func1(memo.At("example.fib"), func(n int) int { return n }, func(n int) int {
//	    if n < 2 {
//	        return n
//	    }
//	    return fib(n-1) + fib(n-2)
//	})
func Func1[A any, K comparable, R any](site *Site, key func(A) K, fn func(A) R) func(A) R {
	return func(a A) R {
		return Call(site, key(a), func() R { return fn(a) })
	}
}

// Func2 is Func1 for two arguments.
func Func2[A, B any, K comparable, R any](site *Site, key func(A, B) K, fn func(A, B) R) func(A, B) R {
	return func(a A, b B) R {
		return Call(site, key(a, b), func() R { return fn(a, b) })
	}
}

// Func3 is Func1 for three arguments.
func Func3[A, B, C any, K comparable, R any](site *Site, key func(A, B, C) K, fn func(A, B, C) R) func(A, B, C) R {
	return func(a A, b B, c C) R {
		return Call(site, key(a, b, c), func() R { return fn(a, b, c) })
	}
}

// FuncErr returns a memoized version of a fallible fn. Only successful
// results are cached; a failed call is retried the next time.
func FuncErr[A any, K comparable, R any](site *Site, key func(A) K, fn func(A) (R, error)) func(A) (R, error) {
	return func(a A) (R, error) {
		return CallWith(site, key(a), admitOK[K, R], func() Result[R] {
			v, err := fn(a)
			return Try(v, err)
		}).Unwrap()
	}
}

// Pair is a comparable two-part key, handy for functions keyed by two
// arguments.
type Pair[A, B comparable] struct {
	First  A
	Second B
}

// Key2 builds a Pair key from two comparable arguments.
func Key2[A, B comparable](a A, b B) Pair[A, B] { return Pair[A, B]{a, b} }
