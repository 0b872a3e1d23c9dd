package assert

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"regexp"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unitrun/internal/event"
)

var sink int

func TestInstanceOf(t *testing.T) {
	d := NewDispatcher()
	e, rec := newTestEnv()

	e = d.Is(e, InstanceOf(reflect.TypeFor[string](), Lit("hi")), "")
	e = d.Is(e, InstanceOf(reflect.TypeFor[string](), Lit(7)), "")
	e = d.Is(e, InstanceOf(reflect.TypeFor[error](), Lit(fs.ErrNotExist)), "")
	e = d.Is(e, InstanceOf(reflect.TypeFor[string](), Lit(nil)), "")

	assert.Equal(t, event.Counts{Pass: 2, Fail: 2}, e.Counts())
	fails := rec.Of(event.KindFail)
	assert.Equal(t, reflect.TypeFor[int](), fails[0].Actual)
	assert.Equal(t, event.Source("(instance? string 7)"), fails[0].Expected)
	assert.Nil(t, fails[1].Actual)
	assert.Equal(t, reflect.TypeFor[string](), rec.Of(event.KindPass)[0].Actual)
}

func TestThrown_Matching(t *testing.T) {
	d := NewDispatcher()
	e, rec := newTestEnv()

	divide := Body("(/ 1 0)", func() {
		zero := 0
		sink = 1 / zero
	})
	e = d.Is(e, Thrown(ErrorOf[runtime.Error](), divide), "")

	assert.Equal(t, event.Counts{Pass: 1}, e.Counts())
	ev := rec.Of(event.KindPass)[0]
	assert.Equal(t, event.Source("(thrown? runtime.Error (/ 1 0))"), ev.Expected)
	_, ok := ev.Actual.(runtime.Error)
	assert.True(t, ok)
}

func TestThrown_ReturnedError(t *testing.T) {
	d := NewDispatcher()
	e, _ := newTestEnv()

	open := BodyErr("(open)", func() error { return fmt.Errorf("open: %w", fs.ErrNotExist) })
	e = d.Is(e, Thrown(MatchFunc("not-exist", func(r any) bool {
		err, ok := r.(error)
		return ok && errors.Is(err, fs.ErrNotExist)
	}), open), "")

	assert.Equal(t, event.Counts{Pass: 1}, e.Counts())
}

func TestThrown_NothingRaised(t *testing.T) {
	d := NewDispatcher()
	e, rec := newTestEnv()

	e = d.Is(e, Thrown(AnyError(), Body("(quiet)", func() {})), "")

	assert.Equal(t, event.Counts{Fail: 1}, e.Counts())
	assert.Nil(t, rec.Of(event.KindFail)[0].Actual)
}

func TestThrown_MismatchEscapes(t *testing.T) {
	d := NewDispatcher()
	e, rec := newTestEnv()

	body := Body("(boom)", func() { panic("not an error") })

	defer func() {
		r := recover()
		esc, ok := r.(*Escape)
		require.True(t, ok, "expected *Escape, got %v", r)
		assert.Equal(t, "not an error", esc.Value)
		assert.Empty(t, rec.Events())
	}()
	d.Is(e, Thrown(ErrorOf[runtime.Error](), body), "")
	t.Fatal("unreachable")
}

func TestThrownWithMessage(t *testing.T) {
	d := NewDispatcher()
	e, rec := newTestEnv()
	bad := BodyErr("(bad)", func() error { return errors.New("bad input: 42") })

	e = d.Is(e, ThrownWithMessage(AnyError(), `input: \d+`, bad), "")
	e = d.Is(e, ThrownWithMessageRe(AnyError(), regexp.MustCompile(`^missing`), bad), "")
	e = d.Is(e, ThrownWithMessage(AnyError(), `x`, Body("(quiet)", func() {})), "")

	assert.Equal(t, event.Counts{Pass: 1, Fail: 2}, e.Counts())
	fails := rec.Of(event.KindFail)
	assert.EqualError(t, fails[0].Actual.(error), "bad input: 42")
	assert.Nil(t, fails[1].Actual)
	assert.Equal(t, event.Source(`(thrown-with-message? any "input: \\d+" (bad))`), rec.Of(event.KindPass)[0].Expected)
}

func TestThrownWithMessage_InvalidPatternIsError(t *testing.T) {
	d := NewDispatcher()
	e, _ := newTestEnv()

	e = d.Is(e, ThrownWithMessage(AnyError(), `(`, Body("(boom)", func() { panic("x") })), "")

	assert.Equal(t, event.Counts{Error: 1}, e.Counts())
}

func TestSpecial_WrongOperandCount(t *testing.T) {
	d := NewDispatcher()
	e, rec := newTestEnv()

	e = d.Is(e, Special(TagThrown, Lit(1)), "")

	assert.Equal(t, event.Counts{Error: 1}, e.Counts())
	assert.ErrorIs(t, rec.Of(event.KindError)[0].Actual.(error), ErrOperands)
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "e", MessageOf(errors.New("e")))
	assert.Equal(t, "s", MessageOf("s"))
	assert.Equal(t, "42", MessageOf(42))
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "v", Unescape(&Escape{Value: "v"}))
	assert.Equal(t, 3, Unescape(3))
}
