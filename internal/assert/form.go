package assert

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/unitrun/internal/event"
)

// Predicate is an ordinary function applied to evaluated operands.
type Predicate func(args ...any) any

// Expr is a lazily evaluated operand together with its source text.
type Expr struct {
	Src  string
	Eval func() any
}

// Lit is an operand that evaluates to v.
func Lit(v any) Expr {
	return Expr{Src: event.Repr(v), Eval: func() any { return v }}
}

// Thunk is an operand evaluated by calling fn.
func Thunk(src string, fn func() any) Expr {
	return Expr{Src: src, Eval: fn}
}

// Apply is a nested call operand: it evaluates args and applies pred.
func Apply(head string, pred Predicate, args ...Expr) Expr {
	return Expr{
		Src: callSource(head, args),
		Eval: func() any {
			return pred(evalAll(args)...)
		},
	}
}

// Body is an operand that runs fn for its effect, typically a panic.
func Body(src string, fn func()) Expr {
	return Expr{Src: src, Eval: func() any {
		fn()
		return nil
	}}
}

// BodyErr is an operand whose returned error counts as raised.
func BodyErr(src string, fn func() error) Expr {
	return Expr{Src: src, Eval: func() any {
		if err := fn(); err != nil {
			return err
		}
		return nil
	}}
}

// Form is an assertion awaiting expansion.
//
// Head selects the expansion strategy. A form with a Pred is call-shaped and
// handled by the catch-all strategy unless Head is a registered tag. A form
// with an empty Head is a bare expression whose single operand is tested for
// truthiness.
type Form struct {
	Head string
	Pred Predicate
	Args []Expr

	// Src overrides the rendered source of the unevaluated form.
	Src string
}

// Source returns the textual representation of the unevaluated form.
func (f Form) Source() string {
	if f.Src != "" {
		return f.Src
	}
	if f.Head == "" && len(f.Args) == 1 {
		return f.Args[0].Src
	}
	return callSource(f.Head, f.Args)
}

// Call is a predicate-shaped form (head arg...).
func Call(head string, pred Predicate, args ...Expr) Form {
	return Form{Head: head, Pred: pred, Args: args}
}

// Value is a bare expression form.
func Value(x Expr) Form {
	return Form{Args: []Expr{x}}
}

// Special is a form for a registered tag with the given operands.
func Special(tag string, args ...Expr) Form {
	return Form{Head: tag, Args: args}
}

// InstanceOf is (instance? typ x).
func InstanceOf(typ reflect.Type, x Expr) Form {
	return Special(TagInstance, Expr{Src: typeName(typ), Eval: func() any { return typ }}, x)
}

// Thrown is (thrown? m body).
func Thrown(m ErrorMatcher, body Expr) Form {
	return Special(TagThrown, matcherExpr(m), body)
}

// ThrownWithMessage is (thrown-with-message? m pattern body). The pattern is
// compiled when the assertion runs; an invalid pattern is reported as an error.
func ThrownWithMessage(m ErrorMatcher, pattern string, body Expr) Form {
	return Special(TagThrownWithMessage, matcherExpr(m), Lit(pattern), body)
}

// ThrownWithMessageRe is ThrownWithMessage with a precompiled pattern.
func ThrownWithMessageRe(m ErrorMatcher, re *regexp.Regexp, body Expr) Form {
	return Special(TagThrownWithMessage, matcherExpr(m),
		Expr{Src: strconv.Quote(re.String()), Eval: func() any { return re }}, body)
}

func matcherExpr(m ErrorMatcher) Expr {
	return Expr{Src: m.String(), Eval: func() any { return m }}
}

func typeName(typ reflect.Type) string {
	if typ == nil {
		return "nil"
	}
	return typ.String()
}

func callSource(head string, args []Expr) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(head)
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(a.Src)
	}
	b.WriteByte(')')
	return b.String()
}

func evalAll(args []Expr) []any {
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a.Eval()
	}
	return vals
}
