package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/unitrun/internal/event"
)

func newGolden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sampleStream() []event.Event {
	return []event.Event{
		{Kind: event.KindBeginGroup, Group: "math"},
		{Kind: event.KindPass, Units: []string{"addition"}, Expected: event.Source("(= 4 (+ 2 2))")},
		{
			Kind:     event.KindFail,
			Units:    []string{"outer", "addition"},
			Location: &event.Location{File: "math.yaml", Line: 3},
			Contexts: []string{"small numbers", "positive"},
			Message:  "sum",
			Expected: event.Source("(= 4 (+ 2 3))"),
			Actual:   event.Not{Of: event.Call{Head: "=", Args: []any{4, 5}}},
		},
		{
			Kind:    event.KindError,
			Units:   []string{"division"},
			Message: "Uncaught exception, not in assertion.",
			Actual:  errors.New("divide by zero"),
		},
		{Kind: event.KindEndGroup, Group: "math"},
		{Kind: event.KindSummary, Counts: event.Counts{Units: 2, Pass: 1, Fail: 1, Error: 1}},
	}
}

func TestText_GoldenStream(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf)
	for _, ev := range sampleStream() {
		r.Report(ev)
	}

	newGolden(t).Assert(t, "text_stream", buf.Bytes())
}

func TestText_PassPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	NewText(&buf).Report(event.Event{Kind: event.KindPass, Units: []string{"u"}})
	assert.Empty(t, buf.String())
}

func TestText_ReservedKindsPrintNothing(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf)
	r.Report(event.Event{Kind: event.KindEndGroup, Group: "g"})
	r.Report(event.Event{Kind: event.KindBeginTestUnit, Unit: "u"})
	r.Report(event.Event{Kind: event.KindEndTestUnit, Unit: "u"})
	assert.Empty(t, buf.String())
}

func TestText_SummaryIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf)
	ev := event.Event{Kind: event.KindSummary, Counts: event.Counts{Units: 1, Pass: 2}}
	r.Report(ev)
	first := buf.String()
	buf.Reset()
	r.Report(ev)

	assert.Equal(t, first, buf.String())
	assert.Contains(t, first, "Ran 1 tests containing 2 assertions.")
	assert.Contains(t, first, "0 failures, 0 errors.")
}

func TestText_Color(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, WithColor(true))
	r.Report(event.Event{Kind: event.KindFail, Units: []string{"u"}})

	assert.Contains(t, buf.String(), ansiRed+"FAIL"+ansiReset+" in (u)")
}

func TestText_NoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf)
	r.Report(event.Event{Kind: event.KindError, Units: []string{"u"}, Actual: "boom"})

	assert.NotContains(t, buf.String(), ansiRed)
	assert.Contains(t, buf.String(), "  actual: boom\n")
}
