package suite

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/unitrun/internal/assert"
	"github.com/roach88/unitrun/internal/event"
)

// ErrorKind classifies evaluation failures.
type ErrorKind string

const (
	KindArithmetic ErrorKind = "arithmetic"
	KindType       ErrorKind = "type"
	KindUnresolved ErrorKind = "unresolved"
)

// EvalError is raised (as a panic) when a form cannot be evaluated.
type EvalError struct {
	Kind ErrorKind
	Msg  string
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

// IsEvalError reports whether err is an *EvalError of the given kind.
func IsEvalError(err error, kind ErrorKind) bool {
	var ee *EvalError
	return errors.As(err, &ee) && ee.Kind == kind
}

func raise(kind ErrorKind, format string, args ...any) {
	panic(&EvalError{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// Functions are the callable heads of suite forms.
//
// Arithmetic stays in int while every operand is an int and promotes to
// float64 once any operand is a float, so "/" on ints truncates toward zero:
// (/ 7 2) is 3 and (/ 7.0 2) is 3.5.
var Functions = map[string]assert.Predicate{
	"=":         equalAll,
	"not=":      func(args ...any) any { return !equalAll(args...).(bool) },
	"<":         compareChain(func(c int) bool { return c < 0 }),
	">":         compareChain(func(c int) bool { return c > 0 }),
	"<=":        compareChain(func(c int) bool { return c <= 0 }),
	">=":        compareChain(func(c int) bool { return c >= 0 }),
	"+":         add,
	"-":         subtract,
	"*":         multiply,
	"/":         divide,
	"not":       func(args ...any) any { arity("not", 1, args); return !assert.Truthy(args[0]) },
	"nil?":      func(args ...any) any { arity("nil?", 1, args); return args[0] == nil },
	"empty?":    func(args ...any) any { arity("empty?", 1, args); return length("empty?", args[0]) == 0 },
	"count":     func(args ...any) any { arity("count", 1, args); return length("count", args[0]) },
	"str":       str,
	"contains?": contains,
	"list":      func(args ...any) any { return append([]any{}, args...) },
}

func arity(name string, want int, args []any) {
	if len(args) != want {
		raise(KindType, "%s takes %d arguments, got %d", name, want, len(args))
	}
}

// number converts YAML numeric values. ok is false for non-numbers.
func number(v any) (f float64, isInt bool, ok bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case float64:
		return n, false, true
	default:
		return 0, false, false
	}
}

func equal(a, b any) bool {
	fa, _, okA := number(a)
	fb, _, okB := number(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func equalAll(args ...any) any {
	for i := 1; i < len(args); i++ {
		if !equal(args[0], args[i]) {
			return false
		}
	}
	return true
}

func compareChain(ok func(int) bool) assert.Predicate {
	return func(args ...any) any {
		for i := 1; i < len(args); i++ {
			if !ok(compare(args[i-1], args[i])) {
				return false
			}
		}
		return true
	}
}

func compare(a, b any) int {
	fa, _, okA := number(a)
	fb, _, okB := number(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return strings.Compare(sa, sb)
	}
	raise(KindType, "cannot compare %s and %s", event.Repr(a), event.Repr(b))
	return 0
}

// fold applies op left to right over numeric args. All-int arguments stay
// int; any float promotes the result to float64.
func fold(name string, args []any, intOp func(a, b int) int, floatOp func(a, b float64) float64) any {
	allInt := true
	for _, a := range args {
		_, isInt, ok := number(a)
		if !ok {
			raise(KindType, "%s expects numbers, got %s", name, event.Repr(a))
		}
		allInt = allInt && isInt
	}
	if allInt {
		acc := toInt(args[0])
		for _, a := range args[1:] {
			acc = intOp(acc, toInt(a))
		}
		return acc
	}
	acc, _, _ := number(args[0])
	for _, a := range args[1:] {
		f, _, _ := number(a)
		acc = floatOp(acc, f)
	}
	return acc
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}

func add(args ...any) any {
	return fold("+", append([]any{0}, args...),
		func(a, b int) int { return a + b },
		func(a, b float64) float64 { return a + b })
}

func multiply(args ...any) any {
	return fold("*", append([]any{1}, args...),
		func(a, b int) int { return a * b },
		func(a, b float64) float64 { return a * b })
}

func subtract(args ...any) any {
	switch len(args) {
	case 0:
		raise(KindType, "- takes at least one argument")
	case 1:
		args = []any{0, args[0]}
	}
	return fold("-", args,
		func(a, b int) int { return a - b },
		func(a, b float64) float64 { return a - b })
}

func divide(args ...any) any {
	if len(args) < 2 {
		raise(KindType, "/ takes at least two arguments")
	}
	return fold("/", args,
		func(a, b int) int {
			if b == 0 {
				raise(KindArithmetic, "divide by zero")
			}
			return a / b
		},
		func(a, b float64) float64 {
			if b == 0 {
				raise(KindArithmetic, "divide by zero")
			}
			return a / b
		})
}

func length(name string, v any) int {
	switch c := v.(type) {
	case string:
		return len([]rune(c))
	case []any:
		return len(c)
	case map[string]any:
		return len(c)
	case nil:
		return 0
	default:
		raise(KindType, "%s expects a string, list or map, got %s", name, event.Repr(v))
		return 0
	}
}

func str(args ...any) any {
	var b strings.Builder
	for _, a := range args {
		if a != nil {
			fmt.Fprint(&b, a)
		}
	}
	return b.String()
}

func contains(args ...any) any {
	arity("contains?", 2, args)
	switch c := args[0].(type) {
	case string:
		sub, ok := args[1].(string)
		if !ok {
			raise(KindType, "contains? on a string expects a string, got %s", event.Repr(args[1]))
		}
		return strings.Contains(c, sub)
	case []any:
		for _, elem := range c {
			if equal(elem, args[1]) {
				return true
			}
		}
		return false
	case map[string]any:
		key, ok := args[1].(string)
		if !ok {
			return false
		}
		_, found := c[key]
		return found
	default:
		raise(KindType, "contains? expects a string, list or map, got %s", event.Repr(args[0]))
		return false
	}
}
