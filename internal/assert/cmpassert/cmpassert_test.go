package cmpassert

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	unit "github.com/roach88/unitrun/internal/assert"
	"github.com/roach88/unitrun/internal/env"
	"github.com/roach88/unitrun/internal/event"
	"github.com/roach88/unitrun/internal/report"
)

type point struct{ X, Y int }

func TestEqual(t *testing.T) {
	d := unit.NewDispatcher()
	require.NoError(t, Register(d))
	rec := report.NewRecorder()
	e := env.New(env.WithReporter(rec), env.WithRunID("r"))

	e = d.Is(e, Equal(unit.Lit(point{1, 2}), unit.Lit(point{1, 2})), "")
	e = d.Is(e, Equal(unit.Lit(point{1, 2}), unit.Lit(point{1, 3})), "")

	assert.Equal(t, event.Counts{Pass: 1, Fail: 1}, e.Counts())
	diff, ok := rec.Of(event.KindFail)[0].Actual.(event.Source)
	require.True(t, ok)
	assert.True(t, strings.Contains(string(diff), "Y:"), "diff names the field: %s", diff)
}

func TestEqual_Options(t *testing.T) {
	d := unit.NewDispatcher()
	require.NoError(t, Register(d, cmpopts.EquateEmpty()))
	rec := report.NewRecorder()
	e := env.New(env.WithReporter(rec), env.WithRunID("r"))

	e = d.Is(e, Equal(unit.Lit([]int(nil)), unit.Lit([]int{})), "")

	assert.Equal(t, event.Counts{Pass: 1}, e.Counts())
}

func TestRegister_Twice(t *testing.T) {
	d := unit.NewDispatcher()
	require.NoError(t, Register(d))
	assert.ErrorIs(t, Register(d), unit.ErrDuplicateTag)
}

func TestEqual_WrongArity(t *testing.T) {
	d := unit.NewDispatcher()
	require.NoError(t, Register(d))
	rec := report.NewRecorder()
	e := env.New(env.WithReporter(rec), env.WithRunID("r"))

	e = d.Is(e, unit.Special(TagEqual, unit.Lit(1)), "")

	assert.Equal(t, event.Counts{Error: 1}, e.Counts())
}
