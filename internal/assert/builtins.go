package assert

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/roach88/unitrun/internal/event"
)

// Built-in tags.
const (
	TagInstance          = "instance?"
	TagThrown            = "thrown?"
	TagThrownWithMessage = "thrown-with-message?"
)

// expandDefault is the catch-all strategy. A call-shaped form evaluates its
// operands once, applies the predicate and reports the concrete call as the
// witness, negated on failure. A bare expression reports its own value.
func expandDefault(f Form) Outcome {
	if f.Pred != nil {
		witness := event.Call{Head: f.Head, Args: evalAll(f.Args)}
		if Truthy(f.Pred(witness.Args...)) {
			return Outcome{Pass: true, Actual: witness}
		}
		return Outcome{Actual: event.Not{Of: witness}}
	}
	if f.Head != "" {
		panic(fmt.Errorf("%w: %q", ErrUnresolvedHead, f.Head))
	}
	if len(f.Args) != 1 {
		panic(operandError("expression", 1, len(f.Args)))
	}
	v := f.Args[0].Eval()
	return Outcome{Pass: Truthy(v), Actual: v}
}

// expandInstance reports the object's runtime type as actual, pass or fail.
func expandInstance(f Form) Outcome {
	if len(f.Args) != 2 {
		panic(operandError(TagInstance, 2, len(f.Args)))
	}
	typ, ok := f.Args[0].Eval().(reflect.Type)
	if !ok {
		panic(fmt.Errorf("%w: %s needs a reflect.Type, got %s", ErrOperands, TagInstance, f.Args[0].Src))
	}
	obj := f.Args[1].Eval()
	if obj == nil {
		return Outcome{}
	}
	actual := reflect.TypeOf(obj)
	return Outcome{Pass: actual.AssignableTo(typ), Actual: actual}
}

func expandThrown(f Form) Outcome {
	if len(f.Args) != 2 {
		panic(operandError(TagThrown, 2, len(f.Args)))
	}
	m := matcherOf(TagThrown, f.Args[0])
	raised, did := raise(f.Args[1])
	if !did {
		return Outcome{}
	}
	if !m.Match(raised) {
		panic(&Escape{Value: raised})
	}
	return Outcome{Pass: true, Actual: raised}
}

func expandThrownWithMessage(f Form) Outcome {
	if len(f.Args) != 3 {
		panic(operandError(TagThrownWithMessage, 3, len(f.Args)))
	}
	m := matcherOf(TagThrownWithMessage, f.Args[0])
	re := patternOf(f.Args[1])
	raised, did := raise(f.Args[2])
	if !did {
		return Outcome{}
	}
	if !m.Match(raised) {
		panic(&Escape{Value: raised})
	}
	return Outcome{Pass: re.MatchString(MessageOf(raised)), Actual: raised}
}

// raise evaluates body and returns what it raised: the recovered panic value
// or a non-nil returned error.
func raise(body Expr) (raised any, did bool) {
	defer func() {
		if r := recover(); r != nil {
			raised, did = Unescape(r), true
		}
	}()
	if err, ok := body.Eval().(error); ok && err != nil {
		return err, true
	}
	return nil, false
}

func matcherOf(tag string, x Expr) ErrorMatcher {
	m, ok := x.Eval().(ErrorMatcher)
	if !ok {
		panic(fmt.Errorf("%w: %s needs an ErrorMatcher, got %s", ErrOperands, tag, x.Src))
	}
	return m
}

func patternOf(x Expr) *regexp.Regexp {
	switch p := x.Eval().(type) {
	case *regexp.Regexp:
		return p
	case string:
		return regexp.MustCompile(p)
	default:
		panic(fmt.Errorf("%w: %s needs a pattern, got %s", ErrOperands, TagThrownWithMessage, x.Src))
	}
}

// MessageOf returns the message text of a raised value.
func MessageOf(raised any) string {
	switch v := raised.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Truthy reports whether v counts as true: everything except nil, false
// and nil pointers, maps, slices, funcs, channels and interfaces.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
