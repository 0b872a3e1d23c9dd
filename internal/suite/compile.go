package suite

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/unitrun/internal/assert"
	"github.com/roach88/unitrun/internal/env"
	"github.com/roach88/unitrun/internal/event"
	"github.com/roach88/unitrun/internal/runner"
)

// OrderHookName is the unit name of a suite's ordering hook.
const OrderHookName = "(order)"

// Types are the type names accepted by instance?.
var Types = map[string]reflect.Type{
	"int":    reflect.TypeFor[int](),
	"float":  reflect.TypeFor[float64](),
	"string": reflect.TypeFor[string](),
	"bool":   reflect.TypeFor[bool](),
	"list":   reflect.TypeFor[[]any](),
	"map":    reflect.TypeFor[map[string]any](),
}

// matcher resolves an error kind name used by thrown? forms.
func matcher(kind string) (assert.ErrorMatcher, bool) {
	switch ErrorKind(kind) {
	case KindArithmetic, KindType, KindUnresolved:
		return assert.MatchFunc(kind, func(raised any) bool {
			err, ok := raised.(error)
			return ok && IsEvalError(err, ErrorKind(kind))
		}), true
	}
	if kind == "any" {
		return assert.AnyError(), true
	}
	return nil, false
}

// CompileError reports a form that cannot be expanded.
type CompileError struct {
	Path string
	Line int
	Msg  string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// compiler turns one suite's nodes into dispatcher forms.
type compiler struct {
	path string
	file string
	d    *assert.Dispatcher
}

func (c *compiler) errorf(n *yaml.Node, format string, args ...any) error {
	return &CompileError{Path: c.path, Line: n.Line, Msg: fmt.Sprintf(format, args...)}
}

func (c *compiler) location(n *yaml.Node) *event.Location {
	return &event.Location{File: c.file, Line: n.Line}
}

// form compiles the node under an "is" key.
func (c *compiler) form(n *yaml.Node) (assert.Form, error) {
	head, args, ok := call(n)
	if !ok {
		x, err := c.expr(n)
		if err != nil {
			return assert.Form{}, err
		}
		return assert.Value(x), nil
	}

	switch head {
	case assert.TagInstance:
		return c.instanceForm(n, args)
	case assert.TagThrown:
		return c.thrownForm(n, head, args, false)
	case assert.TagThrownWithMessage:
		return c.thrownForm(n, head, args, true)
	}

	exprs, err := c.exprs(args)
	if err != nil {
		return assert.Form{}, err
	}
	if c.d.Has(head) {
		return assert.Special(head, exprs...), nil
	}
	if pred, ok := Functions[head]; ok {
		return assert.Call(head, pred, exprs...), nil
	}
	// Unknown heads expand to a form the dispatcher reports as an error.
	return assert.Form{Head: head, Args: exprs}, nil
}

func (c *compiler) instanceForm(n *yaml.Node, args []*yaml.Node) (assert.Form, error) {
	if len(args) != 2 {
		return assert.Form{}, c.errorf(n, "instance? takes a type name and a value, got %d operands", len(args))
	}
	typ, ok := Types[args[0].Value]
	if args[0].Kind != yaml.ScalarNode || !ok {
		return assert.Form{}, c.errorf(args[0], "unknown type %q", args[0].Value)
	}
	x, err := c.expr(args[1])
	if err != nil {
		return assert.Form{}, err
	}
	f := assert.InstanceOf(typ, x)
	f.Src = fmt.Sprintf("(%s %s %s)", assert.TagInstance, args[0].Value, x.Src)
	return f, nil
}

func (c *compiler) thrownForm(n *yaml.Node, head string, args []*yaml.Node, withMessage bool) (assert.Form, error) {
	want := 2
	if withMessage {
		want = 3
	}
	if len(args) != want {
		return assert.Form{}, c.errorf(n, "%s takes %d operands, got %d", head, want, len(args))
	}
	m, ok := matcher(args[0].Value)
	if args[0].Kind != yaml.ScalarNode || !ok {
		return assert.Form{}, c.errorf(args[0], "unknown error kind %q", args[0].Value)
	}
	body, err := c.expr(args[want-1])
	if err != nil {
		return assert.Form{}, err
	}
	if !withMessage {
		return assert.Thrown(m, body), nil
	}
	if args[1].Kind != yaml.ScalarNode {
		return assert.Form{}, c.errorf(args[1], "message pattern must be a string")
	}
	return assert.ThrownWithMessage(m, args[1].Value, body), nil
}

// expr compiles an operand node. Calls evaluate lazily; an unknown head
// raises an unresolved error when evaluated.
func (c *compiler) expr(n *yaml.Node) (assert.Expr, error) {
	head, args, ok := call(n)
	if !ok {
		v, err := literal(n)
		if err != nil {
			return assert.Expr{}, c.errorf(n, "%v", err)
		}
		return assert.Lit(v), nil
	}

	exprs, err := c.exprs(args)
	if err != nil {
		return assert.Expr{}, err
	}
	pred, ok := Functions[head]
	if !ok {
		pred = func(...any) any {
			raise(KindUnresolved, "unable to resolve symbol: %s", head)
			return nil
		}
	}
	return assert.Apply(head, pred, exprs...), nil
}

func (c *compiler) exprs(nodes []*yaml.Node) ([]assert.Expr, error) {
	out := make([]assert.Expr, len(nodes))
	for i, n := range nodes {
		x, err := c.expr(n)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

// call splits a sequence node whose first element is a plain string.
func call(n *yaml.Node) (head string, args []*yaml.Node, ok bool) {
	if n.Kind != yaml.SequenceNode || len(n.Content) == 0 {
		return "", nil, false
	}
	first := n.Content[0]
	if first.Kind != yaml.ScalarNode || first.Tag != "!!str" || !isSymbol(first.Value) {
		return "", nil, false
	}
	return first.Value, n.Content[1:], true
}

// isSymbol reports whether s can name a function or tag. Strings with
// whitespace are prose, so ["a b", 1] stays a literal list.
func isSymbol(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t\n")
}

// literal decodes a non-call node into a plain value.
func literal(n *yaml.Node) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// normalize rewrites decoded YAML so lists are []any and maps are
// map[string]any with string keys.
func normalize(v any) any {
	switch val := v.(type) {
	case []any:
		for i := range val {
			val[i] = normalize(val[i])
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = normalize(val[k])
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = normalize(elem)
		}
		return out
	}
	return v
}

// Units expands suites into runner units. Unit bodies report through d and
// run nested units through r. A suite with an order list also gets an
// ordering hook unit.
func Units(d *assert.Dispatcher, r *runner.Runner, suites ...*Suite) ([]runner.Unit, error) {
	var units []runner.Unit
	var errs []error
	for _, s := range suites {
		us, err := suiteUnits(d, r, s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		units = append(units, us...)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return units, nil
}

func suiteUnits(d *assert.Dispatcher, r *runner.Runner, s *Suite) ([]runner.Unit, error) {
	path := s.Path
	if path == "" {
		path = s.Group
	}
	c := &compiler{path: path, file: filepath.Base(path), d: d}

	// byName is filled once every body exists; bodies only read it when run.
	byName := make(map[string]runner.Unit, len(s.Units))
	units := make([]runner.Unit, len(s.Units))
	for i, spec := range s.Units {
		units[i] = runner.Unit{Name: spec.Name, Group: s.Group}
		if !spec.IsTest() {
			continue
		}
		steps, err := c.steps(spec.Assertions)
		if err != nil {
			return nil, err
		}
		units[i].Body = unitBody(d, r, steps, spec.Run, byName)
	}
	for _, u := range units {
		byName[u.Name] = u
	}

	if len(s.Order) > 0 {
		order := s.Order
		units = append(units, runner.Unit{
			Name:  OrderHookName,
			Group: s.Group,
			Hook:  true,
			Body: func(e env.Env) env.Env {
				for _, name := range order {
					if e.EarlyReturn() {
						return e
					}
					e = r.RunUnit(e, byName[name])
				}
				return e
			},
		})
	}
	return units, nil
}

// step is one compiled assertion item.
type step func(d *assert.Dispatcher, e env.Env) env.Env

func (c *compiler) steps(specs []AssertionSpec) ([]step, error) {
	out := make([]step, 0, len(specs))
	for _, spec := range specs {
		if spec.Testing != "" {
			nested, err := c.steps(spec.Assertions)
			if err != nil {
				return nil, err
			}
			desc := spec.Testing
			out = append(out, func(d *assert.Dispatcher, e env.Env) env.Env {
				return env.Testing(e, desc, func(e env.Env) env.Env {
					return runSteps(d, e, nested)
				})
			})
			continue
		}

		node := spec.Is
		f, err := c.form(&node)
		if err != nil {
			return nil, err
		}
		msg, loc := spec.Message, c.location(&node)
		out = append(out, func(d *assert.Dispatcher, e env.Env) env.Env {
			return d.IsAt(e, f, msg, loc)
		})
	}
	return out, nil
}

func runSteps(d *assert.Dispatcher, e env.Env, steps []step) env.Env {
	for _, s := range steps {
		if e.EarlyReturn() {
			return e
		}
		e = s(d, e)
	}
	return e
}

// unitBody chains a unit's assertions with the sibling units it runs.
func unitBody(d *assert.Dispatcher, r *runner.Runner, steps []step, run []string, byName map[string]runner.Unit) runner.Body {
	return func(e env.Env) env.Env {
		e = runSteps(d, e, steps)
		for _, name := range run {
			if e.EarlyReturn() {
				return e
			}
			e = r.RunUnit(e, byName[name])
		}
		return e
	}
}
