// Package otelreport maps the engine's event stream onto OpenTelemetry spans.
//
// A run becomes a root span, each group a child of the run and each test unit
// a child of the innermost open unit (or its group). Assertion outcomes are
// recorded as span events; fail and error mark the enclosing span with
// codes.Error. The summary event ends the run span.
package otelreport

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/unitrun/internal/event"
)

// TracerName is the instrumentation name used for every span.
const TracerName = "github.com/roach88/unitrun"

// Attribute keys.
const (
	AttrRunID    = attribute.Key("unitrun.run_id")
	AttrGroup    = attribute.Key("unitrun.group")
	AttrUnit     = attribute.Key("unitrun.unit")
	AttrUnits    = attribute.Key("unitrun.units")
	AttrContexts = attribute.Key("unitrun.contexts")
	AttrMessage  = attribute.Key("unitrun.message")
	AttrExpected = attribute.Key("unitrun.expected")
	AttrActual   = attribute.Key("unitrun.actual")
	AttrLocation = attribute.Key("unitrun.location")
)

type frame struct {
	ctx  context.Context
	span trace.Span
}

// Reporter is an event.Reporter that emits spans.
//
// Thread-safety: Report and Close are serialized by an internal mutex.
type Reporter struct {
	mu     sync.Mutex
	tracer trace.Tracer
	parent context.Context

	run   *frame
	group *frame
	units []frame
}

// New creates a reporter whose spans come from tp. The run span is a child
// of any span in ctx.
func New(ctx context.Context, tp trace.TracerProvider) *Reporter {
	return &Reporter{
		tracer: tp.Tracer(TracerName),
		parent: ctx,
	}
}

// Report implements event.Reporter.
func (r *Reporter) Report(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.startRun(ev.RunID)

	switch ev.Kind {
	case event.KindBeginGroup:
		r.endGroup()
		ctx, span := r.tracer.Start(r.run.ctx, "group "+ev.Group,
			trace.WithAttributes(AttrGroup.String(ev.Group)))
		r.group = &frame{ctx: ctx, span: span}

	case event.KindEndGroup:
		r.endGroup()

	case event.KindBeginTestUnit:
		parent := r.current()
		ctx, span := r.tracer.Start(parent.ctx, "unit "+ev.Unit,
			trace.WithAttributes(
				AttrGroup.String(ev.Group),
				AttrUnit.String(ev.Unit),
				AttrUnits.StringSlice(ev.Units),
			))
		r.units = append(r.units, frame{ctx: ctx, span: span})

	case event.KindEndTestUnit:
		if n := len(r.units); n > 0 {
			r.units[n-1].span.End()
			r.units = r.units[:n-1]
		}

	case event.KindPass, event.KindFail, event.KindError:
		r.outcome(ev)

	case event.KindSummary:
		r.summary(ev.Counts)
	}
}

func (r *Reporter) startRun(runID string) {
	if r.run != nil {
		return
	}
	ctx, span := r.tracer.Start(r.parent, "run",
		trace.WithAttributes(AttrRunID.String(runID)))
	r.run = &frame{ctx: ctx, span: span}
}

// current is the innermost open span.
func (r *Reporter) current() frame {
	if n := len(r.units); n > 0 {
		return r.units[n-1]
	}
	if r.group != nil {
		return *r.group
	}
	return *r.run
}

func (r *Reporter) outcome(ev event.Event) {
	attrs := []attribute.KeyValue{
		AttrExpected.String(event.Repr(ev.Expected)),
		AttrActual.String(event.Repr(ev.Actual)),
	}
	if ev.Message != "" {
		attrs = append(attrs, AttrMessage.String(ev.Message))
	}
	if len(ev.Contexts) > 0 {
		attrs = append(attrs, AttrContexts.String(strings.Join(ev.Contexts, " ")))
	}
	if ev.Location != nil {
		attrs = append(attrs, AttrLocation.String(ev.Location.String()))
	}

	span := r.current().span
	span.AddEvent(string(ev.Kind), trace.WithAttributes(attrs...))
	if ev.Kind == event.KindPass {
		return
	}

	desc := ev.Message
	if desc == "" {
		desc = string(ev.Kind)
	}
	span.SetStatus(codes.Error, desc)
	if r.group != nil && span != r.group.span {
		r.group.span.SetStatus(codes.Error, "group has failures")
	}
}

func (r *Reporter) summary(c event.Counts) {
	r.endUnits()
	r.endGroup()
	r.run.span.SetAttributes(
		attribute.Int("unitrun.unit_count", c.Units),
		attribute.Int("unitrun.pass", c.Pass),
		attribute.Int("unitrun.fail", c.Fail),
		attribute.Int("unitrun.error", c.Error),
	)
	if !event.IsSuccessful(c) {
		r.run.span.SetStatus(codes.Error, "run has failures")
	}
	r.run.span.End()
	r.run = nil
}

func (r *Reporter) endGroup() {
	if r.group == nil {
		return
	}
	r.endUnits()
	r.group.span.End()
	r.group = nil
}

func (r *Reporter) endUnits() {
	for i := len(r.units) - 1; i >= 0; i-- {
		r.units[i].span.End()
	}
	r.units = nil
}

// Close ends every span still open, for runs aborted before their summary.
func (r *Reporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.endGroup()
	r.endUnits()
	if r.run != nil {
		r.run.span.SetStatus(codes.Error, "run aborted")
		r.run.span.End()
		r.run = nil
	}
}
