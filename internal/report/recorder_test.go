package report

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/unitrun/internal/event"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Report(event.Event{Kind: event.KindBeginGroup, Group: "g"})
	r.Report(event.Event{Kind: event.KindPass})
	r.Report(event.Event{Kind: event.KindFail})
	r.Report(event.Event{Kind: event.KindPass})

	assert.Equal(t, []event.Kind{event.KindBeginGroup, event.KindPass, event.KindFail, event.KindPass}, r.Kinds())
	assert.Len(t, r.Of(event.KindPass), 2)
	assert.Len(t, r.Events(), 4)

	r.Reset()
	assert.Empty(t, r.Events())
}

func TestTee(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Tee{a, b}.Report(event.Event{Kind: event.KindPass})

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard.Report(event.Event{Kind: event.KindError})
	})
}

func TestSlog_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	r := NewSlog(logger)

	r.Report(event.Event{Kind: event.KindPass, Units: []string{"quiet"}})
	r.Report(event.Event{Kind: event.KindFail, Units: []string{"loud"}, Message: "sum"})
	r.Report(event.Event{Kind: event.KindSummary, Counts: event.Counts{Fail: 1}})

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="assertion fail"`)
	assert.Contains(t, out, "units=loud")
	assert.Contains(t, out, "message=sum")
	assert.NotContains(t, out, "run summary")
}

func TestSlog_Summary(t *testing.T) {
	var buf bytes.Buffer
	r := NewSlog(slog.New(slog.NewTextHandler(&buf, nil)))
	r.Report(event.Event{Kind: event.KindSummary, Counts: event.Counts{Units: 3, Pass: 4}})

	out := buf.String()
	assert.Contains(t, out, `msg="run summary"`)
	assert.Contains(t, out, "units=3")
	assert.Contains(t, out, "pass=4")
}
