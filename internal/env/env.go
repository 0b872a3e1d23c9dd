package env

import (
	"os"
	"slices"

	"github.com/roach88/unitrun/internal/event"
	"github.com/roach88/unitrun/internal/report"
)

// Env is the execution context of a run. The zero value is "not supplied";
// entry points replace it with [New].
type Env struct {
	counts    event.Counts
	units     []string
	contexts  []string
	reporter  event.Reporter
	runID     string
	failFast  bool
	returning bool
	ledger    *ledger
}

// Option configures a new Env.
type Option func(*config)

type config struct {
	reporter event.Reporter
	runID    string
	gen      RunIDGenerator
	failFast bool
}

// WithReporter binds r as the run's reporter.
func WithReporter(r event.Reporter) Option {
	return func(c *config) {
		c.reporter = r
	}
}

// WithRunID fixes the run identifier.
func WithRunID(id string) Option {
	return func(c *config) {
		c.runID = id
	}
}

// WithRunIDGenerator sets the generator used when no run ID is fixed.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(c *config) {
		c.gen = g
	}
}

// WithFailFast makes the first fail or error event set the early-return flag.
func WithFailFast(on bool) Option {
	return func(c *config) {
		c.failFast = on
	}
}

// New creates a fresh Env with zero counters and empty stacks.
//
// Defaults: a text reporter on stdout and a UUIDv7 run ID.
func New(opts ...Option) Env {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.reporter == nil {
		cfg.reporter = report.NewText(os.Stdout)
	}
	if cfg.runID == "" {
		gen := cfg.gen
		if gen == nil {
			gen = UUIDv7Generator{}
		}
		cfg.runID = gen.Generate()
	}
	return Env{
		reporter: cfg.reporter,
		runID:    cfg.runID,
		failFast: cfg.failFast,
		ledger:   &ledger{},
	}
}

// IsZero reports whether e was never initialized by New.
func (e Env) IsZero() bool {
	return e.ledger == nil
}

// OrNew returns e, or a fresh Env if e is the zero value.
func (e Env) OrNew() Env {
	if e.IsZero() {
		return New()
	}
	return e
}

// Counts returns the current counters.
func (e Env) Counts() event.Counts {
	return e.counts
}

// Units returns a copy of the in-flight unit trail, outermost first.
func (e Env) Units() []string {
	return slices.Clone(e.units)
}

// Contexts returns a copy of the nesting-context stack, outermost first.
func (e Env) Contexts() []string {
	return slices.Clone(e.contexts)
}

// Reporter returns the bound reporter.
func (e Env) Reporter() event.Reporter {
	return e.reporter
}

// RunID returns the run identifier.
func (e Env) RunID() string {
	return e.runID
}

// WithReporter returns e with r bound as reporter.
func (e Env) WithReporter(r event.Reporter) Env {
	e.reporter = r
	return e
}

// PushUnit returns e with name appended to the unit trail.
func (e Env) PushUnit(name string) Env {
	e.units = append(slices.Clip(e.units), name)
	return e
}

// PopUnit returns e with the innermost unit removed.
func (e Env) PopUnit() Env {
	if len(e.units) > 0 {
		e.units = slices.Clip(e.units[:len(e.units)-1])
	}
	return e
}

// WithUnits returns e with the unit trail of other.
func (e Env) WithUnits(other Env) Env {
	e.units = other.units
	return e
}

// PushContext returns e with desc appended to the nesting contexts.
func (e Env) PushContext(desc string) Env {
	e.contexts = append(slices.Clip(e.contexts), desc)
	return e
}

// PopContext returns e with the innermost nesting context removed.
func (e Env) PopContext() Env {
	if len(e.contexts) > 0 {
		e.contexts = slices.Clip(e.contexts[:len(e.contexts)-1])
	}
	return e
}

// CountUnit returns e with the unit counter incremented.
func (e Env) CountUnit() Env {
	e.counts.Units++
	if e.ledger != nil {
		e.ledger.addUnit()
	}
	return e
}

// Report hands ev to the reporter and returns e with its counters updated.
//
// The unit trail, nesting contexts and run ID are stamped onto ev as copies
// when ev does not carry its own. Pass, fail and error events increment the
// matching counter; with fail-fast, fail and error also set early return.
func (e Env) Report(ev event.Event) Env {
	if ev.Units == nil {
		ev.Units = e.Units()
	}
	if ev.Contexts == nil {
		ev.Contexts = e.Contexts()
	}
	if ev.RunID == "" {
		ev.RunID = e.runID
	}
	if ev.Kind.IsOutcome() {
		e.counts = e.counts.Add(ev.Kind)
		if e.ledger != nil {
			e.ledger.add(ev.Kind)
		}
		if e.failFast && ev.Kind != event.KindPass {
			e = e.Return()
		}
	}
	if e.reporter != nil {
		e.reporter.Report(ev)
	}
	return e
}

// EarlyReturn reports whether the cooperative short-circuit flag is set.
func (e Env) EarlyReturn() bool {
	return e.returning
}

// Return returns e with the early-return flag set.
func (e Env) Return() Env {
	e.returning = true
	if e.ledger != nil {
		e.ledger.addReturn()
	}
	return e
}

// Mark captures the run ledger so a later Reconcile or Settle can account
// for events reported through Env values that were dropped or lost to a
// panic.
func (e Env) Mark() Mark {
	if e.ledger == nil {
		return Mark{}
	}
	return e.ledger.snapshot()
}

// Reconcile returns e with every increment recorded in the ledger since m
// added to its counters. A return requested since m sets the early-return
// flag.
func (e Env) Reconcile(m Mark) Env {
	if e.ledger == nil {
		return e
	}
	now := e.ledger.snapshot()
	e.counts.Units += now.at.Units - m.at.Units
	e.counts.Pass += now.at.Pass - m.at.Pass
	e.counts.Fail += now.at.Fail - m.at.Fail
	e.counts.Error += now.at.Error - m.at.Error
	if now.returns > m.returns {
		e.returning = true
	}
	return e
}

// Settle returns out with the counters of e reconciled from m, where e is
// the Env that m was taken from. Whatever counts out carries are replaced,
// so events reported through Env values a body dropped still count.
func (e Env) Settle(out Env, m Mark) Env {
	s := e.Reconcile(m)
	out.counts = s.counts
	out.returning = out.returning || s.returning
	return out
}

// Mark is a ledger position taken by [Env.Mark].
type Mark struct {
	at      event.Counts
	returns int
}

// Testing runs body inside the nesting context desc. The context stack of the
// returned Env is the one e had, whatever body did to it.
func Testing(e Env, desc string, body func(Env) Env) Env {
	if e.returning {
		return e
	}
	out := body(e.PushContext(desc))
	out.contexts = e.contexts
	return out
}
