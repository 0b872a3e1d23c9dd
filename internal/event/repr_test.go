package event

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepr(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "nil"},
		{"string", "a\"b", `"a\"b"`},
		{"int", 42, "42"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"list", []any{1, "x", nil}, `[1 "x" nil]`},
		{"type", reflect.TypeOf(0), "int"},
		{"error", errors.New("boom"), `#*errors.errorString "boom"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Repr(tt.in))
		})
	}
}

func TestCallAndNot(t *testing.T) {
	call := Call{Head: "=", Args: []any{4, "four"}}
	assert.Equal(t, `(= 4 "four")`, call.String())
	assert.Equal(t, `(not (= 4 "four"))`, Not{Of: call}.String())
	assert.Equal(t, "(f)", Call{Head: "f"}.String())

	nested := Call{Head: "contains?", Args: []any{[]any{1, 2}, 3}}
	assert.Equal(t, "(contains? [1 2] 3)", Repr(nested))
}
