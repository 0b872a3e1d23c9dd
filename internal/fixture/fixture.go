// Package fixture composes setup/teardown wrappers.
//
// A fixture receives a continuation, performs its setup, invokes the
// continuation exactly once, performs its teardown and returns whatever the
// continuation returned. Fixtures compose by nesting: the first fixture's
// setup runs first and its teardown runs last.
package fixture

// Func is a wrap-style fixture around a continuation producing T.
type Func[T any] func(next func() T) T

// Identity is the fixture that only invokes the continuation.
func Identity[T any](next func() T) T {
	return next()
}

// Compose returns the fixture equivalent to outer(func() T { return inner(next) }).
// Setup order is outer then inner; teardown order is inner then outer.
func Compose[T any](outer, inner Func[T]) Func[T] {
	return func(next func() T) T {
		return outer(func() T {
			return inner(next)
		})
	}
}

// JoinAll left-folds Compose over fixtures, seeded with Identity. An empty
// list yields a fixture that only invokes the continuation.
func JoinAll[T any](fixtures ...Func[T]) Func[T] {
	joined := Func[T](Identity[T])
	for _, f := range fixtures {
		joined = Compose(joined, f)
	}
	return joined
}

// Around builds a fixture from separate setup and teardown functions.
// Teardown is deferred, so it also runs when the continuation panics.
// Either function may be nil.
func Around[T any](setup, teardown func()) Func[T] {
	return func(next func() T) T {
		if setup != nil {
			setup()
		}
		if teardown != nil {
			defer teardown()
		}
		return next()
	}
}
