package assert

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTag is returned when registering an empty tag.
	ErrEmptyTag = errors.New("assert: empty tag")

	// ErrNilExpansion is returned when registering a nil expansion.
	ErrNilExpansion = errors.New("assert: nil expansion")

	// ErrDuplicateTag is returned when a tag is already registered.
	ErrDuplicateTag = errors.New("assert: tag already registered")

	// ErrUnresolvedHead is raised for a form whose head is neither a
	// registered tag nor backed by a predicate.
	ErrUnresolvedHead = errors.New("assert: unresolved form head")

	// ErrOperands is raised when a special form gets the wrong operands.
	ErrOperands = errors.New("assert: bad operands")
)

// Escape carries a raised value out of an assertion boundary untouched.
// The unit boundary unwraps it with [Unescape] and reports the original value.
type Escape struct {
	Value any
}

// Error implements the error interface.
func (e *Escape) Error() string {
	return fmt.Sprintf("escaped assertion boundary: %v", e.Value)
}

// Unescape returns the value carried by an *Escape, or r itself.
func Unescape(r any) any {
	if esc, ok := r.(*Escape); ok {
		return esc.Value
	}
	return r
}

func operandError(tag string, want, got int) error {
	return fmt.Errorf("%w: %s takes %d operands, got %d", ErrOperands, tag, want, got)
}
