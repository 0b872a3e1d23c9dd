package assert

import (
	"errors"
	"reflect"
)

// ErrorMatcher decides whether a raised value is the expected kind of error.
type ErrorMatcher interface {
	Match(raised any) bool
	String() string
}

type typeMatcher[E error] struct{}

// ErrorOf matches raised errors that errors.As can convert to E.
func ErrorOf[E error]() ErrorMatcher {
	return typeMatcher[E]{}
}

func (typeMatcher[E]) Match(raised any) bool {
	err, ok := raised.(error)
	if !ok {
		return false
	}
	var target E
	return errors.As(err, &target)
}

func (typeMatcher[E]) String() string {
	return reflect.TypeFor[E]().String()
}

type anyMatcher struct{}

// AnyError matches every raised value.
func AnyError() ErrorMatcher {
	return anyMatcher{}
}

func (anyMatcher) Match(any) bool { return true }

func (anyMatcher) String() string { return "any" }

type funcMatcher struct {
	name string
	fn   func(any) bool
}

// MatchFunc matches raised values accepted by fn. name is used in sources.
func MatchFunc(name string, fn func(raised any) bool) ErrorMatcher {
	return funcMatcher{name: name, fn: fn}
}

func (m funcMatcher) Match(raised any) bool { return m.fn(raised) }

func (m funcMatcher) String() string { return m.name }
