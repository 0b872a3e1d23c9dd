package runner

import (
	"io"
	"log/slog"

	"github.com/roach88/unitrun/internal/assert"
	"github.com/roach88/unitrun/internal/env"
	"github.com/roach88/unitrun/internal/event"
	"github.com/roach88/unitrun/internal/fixture"
)

// UncaughtMessage is the message of the error event reported for a panic
// that escaped every assertion of a unit.
const UncaughtMessage = "Uncaught exception, not in assertion."

// Runner executes units with the fixtures of its registry.
type Runner struct {
	registry *Registry
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for run lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistry sets the fixture registry.
func WithRegistry(reg *Registry) Option {
	return func(r *Runner) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// New creates a runner. Without options it has no fixtures and discards
// its logs.
func New(opts ...Option) *Runner {
	r := &Runner{
		registry: NewRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the runner's fixture registry.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// RunUnit runs one unit and returns the updated Env.
//
// Execution flow:
// 1. Push the unit name and count the unit
// 2. Report begin-test-unit
// 3. Invoke the body inside the uncaught-failure boundary
// 4. On panic, recover the counts from the ledger and report one error event
// 5. Otherwise settle the returned Env's counts against the ledger
// 6. Report end-test-unit and restore the caller's unit trail
//
// A zero e is replaced by env.New(). Units with a nil body are skipped.
func (r *Runner) RunUnit(e env.Env, u Unit) env.Env {
	e = e.OrNew()
	if e.EarlyReturn() || u.Body == nil {
		return e
	}

	outer := e
	e = e.PushUnit(u.Name).CountUnit()
	e = e.Report(event.Event{Kind: event.KindBeginTestUnit, Group: u.Group, Unit: u.Name})

	mark := e.Mark()
	out, raised, panicked := invoke(u.Body, e)
	if panicked {
		r.logger.Debug("uncaught panic in unit",
			"group", u.Group,
			"unit", u.Name,
			"value", raised,
		)
		out = e.Reconcile(mark).Report(event.Event{
			Kind:    event.KindError,
			Message: UncaughtMessage,
			Actual:  raised,
		})
	} else if out.IsZero() {
		out = e.Reconcile(mark)
	} else {
		out = e.Settle(out, mark)
	}

	out = out.WithUnits(e).Report(event.Event{Kind: event.KindEndTestUnit, Group: u.Group, Unit: u.Name})
	return out.WithUnits(outer)
}

// invoke calls body and recovers anything it raises.
func invoke(body Body, e env.Env) (out env.Env, raised any, panicked bool) {
	defer func() {
		if rec := recover(); rec != nil {
			raised, panicked = assert.Unescape(rec), true
		}
	}()
	return body(e), nil, false
}

// RunGroup runs the units of one group.
//
// The group's once-fixtures wrap the whole group and its each-fixtures wrap
// every unit. Units run sorted by name; units without a body are skipped.
// If the group has an ordering hook, only the hook runs, called directly
// with no fixtures applied.
//
// Fixture panics are not recovered.
func (r *Runner) RunGroup(e env.Env, group string, units []Unit) env.Env {
	e = e.OrNew()
	if e.EarlyReturn() {
		return e
	}

	e = e.Report(event.Event{Kind: event.KindBeginGroup, Group: group})
	before := e.Counts()
	mark := e.Mark()

	var out env.Env
	if hook, ok := findHook(units); ok {
		r.logger.Debug("running ordering hook", "group", group, "unit", hook.Name)
		out = hook.Body(e)
	} else {
		fx := r.registry.Fixtures(group)
		once := fixture.JoinAll(fx.Once...)
		each := fixture.JoinAll(fx.Each...)
		out = once(func() env.Env {
			return r.runUnits(e, sortedByName(units), each)
		})
	}
	e = e.Settle(keep(e, out), mark)

	after := e.Counts()
	r.logger.Info("group completed",
		"group", group,
		"units", after.Units-before.Units,
		"pass", after.Pass-before.Pass,
		"fail", after.Fail-before.Fail,
		"error", after.Error-before.Error,
	)
	return e.Report(event.Event{Kind: event.KindEndGroup, Group: group})
}

func (r *Runner) runUnits(e env.Env, units []Unit, each Fixture) env.Env {
	for _, u := range units {
		if e.EarlyReturn() {
			return e
		}
		if u.Body == nil || u.Hook {
			continue
		}
		prev := e
		e = keep(prev, each(func() env.Env { return r.RunUnit(prev, u) }))
	}
	return e
}

// keep returns out, or prev when a fixture returned the zero Env without
// running its continuation.
func keep(prev, out env.Env) env.Env {
	if out.IsZero() {
		return prev
	}
	return out
}

// RunAll groups units by owning group, runs each group in id order and
// reports the summary. A zero e is replaced by env.New().
func (r *Runner) RunAll(e env.Env, units []Unit) env.Env {
	e = e.OrNew()
	ids, byGroup := groupUnits(units)
	for _, id := range ids {
		if e.EarlyReturn() {
			r.logger.Info("early return, skipping remaining groups", "next_group", id)
			break
		}
		e = r.RunGroup(e, id, byGroup[id])
	}

	counts := e.Counts()
	r.logger.Info("run completed",
		"run_id", e.RunID(),
		"units", counts.Units,
		"assertions", counts.Assertions(),
		"fail", counts.Fail,
		"error", counts.Error,
	)
	return e.Report(event.Event{Kind: event.KindSummary, Counts: counts})
}

// Run runs u in a fresh Env with the default reporter and reports whether
// every assertion in it passed.
func Run(u Unit) bool {
	return RunWith(env.New(), u)
}

// RunWith is Run with a caller-supplied Env. Only the outcomes of u count.
func RunWith(e env.Env, u Unit) bool {
	e = e.OrNew()
	before := e.Counts()
	after := New().RunUnit(e, u).Counts()
	return event.IsSuccessful(event.Counts{
		Fail:  after.Fail - before.Fail,
		Error: after.Error - before.Error,
	})
}
