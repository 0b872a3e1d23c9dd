package event

import (
	"fmt"
	"strconv"
	"strings"
)

// Call is the witness of an evaluated call form: the head symbol and the
// concrete argument values it was applied to.
type Call struct {
	Head string
	Args []any
}

// String renders the call as (head arg...).
func (c Call) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(c.Head)
	for _, a := range c.Args {
		b.WriteByte(' ')
		b.WriteString(Repr(a))
	}
	b.WriteByte(')')
	return b.String()
}

// Not marks a failed witness.
type Not struct {
	Of any
}

// String renders the marker as (not witness).
func (n Not) String() string {
	return "(not " + Repr(n.Of) + ")"
}

// Repr renders v the way reporters print expected and actual values.
// Strings are quoted, nil prints as nil and errors print with their type.
func Repr(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(val)
	case error:
		return fmt.Sprintf("#%T %s", val, strconv.Quote(val.Error()))
	case fmt.Stringer:
		return val.String()
	case []any:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = Repr(elem)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Source is the textual form of an unevaluated expression. It prints as is.
type Source string

// String returns the source text.
func (s Source) String() string {
	return string(s)
}
