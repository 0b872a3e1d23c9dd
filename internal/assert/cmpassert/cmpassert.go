// Package cmpassert adds structural equality assertions backed by go-cmp.
package cmpassert

import (
	"github.com/google/go-cmp/cmp"

	"github.com/roach88/unitrun/internal/assert"
	"github.com/roach88/unitrun/internal/event"
)

// TagEqual is (equal? want got).
const TagEqual = "equal?"

// Register adds the equal? tag to d. opts are passed to every comparison.
func Register(d *assert.Dispatcher, opts ...cmp.Option) error {
	return d.Register(TagEqual, Expansion(opts...))
}

// Expansion compares two operands with cmp.Equal. On mismatch the actual
// value is the diff, rendered as source so reporters print it verbatim.
func Expansion(opts ...cmp.Option) assert.Expansion {
	return func(f assert.Form) assert.Outcome {
		if len(f.Args) != 2 {
			panic(assert.ErrOperands)
		}
		want, got := f.Args[0].Eval(), f.Args[1].Eval()
		if cmp.Equal(want, got, opts...) {
			return assert.Outcome{Pass: true, Actual: got}
		}
		return assert.Outcome{Actual: event.Source(cmp.Diff(want, got, opts...))}
	}
}

// Equal is (equal? want got).
func Equal(want, got assert.Expr) assert.Form {
	return assert.Special(TagEqual, want, got)
}
