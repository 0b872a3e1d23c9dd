package assert

import (
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"github.com/roach88/unitrun/internal/env"
	"github.com/roach88/unitrun/internal/event"
)

// Expansion turns a form into an outcome. Expansions may panic; the
// dispatcher reports such panics as error events.
type Expansion func(f Form) Outcome

// Outcome is the result of expanding one form.
type Outcome struct {
	Pass bool

	// Actual is the evaluated result or the produced witness.
	Actual any

	// Expected overrides the form's source as the expected value when set.
	Expected any
}

// Dispatcher maps form heads to expansion strategies.
//
// Thread-safety: Register and lookups are guarded by an RWMutex, so tags may
// be registered from init functions of several packages.
type Dispatcher struct {
	mu       sync.RWMutex
	tags     map[string]Expansion
	fallback Expansion
}

// NewDispatcher creates a dispatcher with the built-in tags registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		tags:     make(map[string]Expansion),
		fallback: expandDefault,
	}
	d.tags[TagInstance] = expandInstance
	d.tags[TagThrown] = expandThrown
	d.tags[TagThrownWithMessage] = expandThrownWithMessage
	return d
}

// Register adds an expansion for tag. Existing tags, built-ins included,
// cannot be replaced.
func (d *Dispatcher) Register(tag string, x Expansion) error {
	if tag == "" {
		return ErrEmptyTag
	}
	if x == nil {
		return fmt.Errorf("%w for tag %q", ErrNilExpansion, tag)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.tags[tag]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTag, tag)
	}
	d.tags[tag] = x
	return nil
}

// Has reports whether tag is registered.
func (d *Dispatcher) Has(tag string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.tags[tag]
	return ok
}

// Tags returns the registered tags in sorted order.
func (d *Dispatcher) Tags() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tags := make([]string, 0, len(d.tags))
	for tag := range d.tags {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Is expands f, reports its outcome through e and returns the updated Env.
// The call site is recorded as the event location.
func (d *Dispatcher) Is(e env.Env, f Form, msg string) env.Env {
	return d.IsAt(e, f, msg, callerLocation(2))
}

// IsAt is Is with an explicit location, for front ends that know where a
// form was written. loc may be nil.
func (d *Dispatcher) IsAt(e env.Env, f Form, msg string, loc *event.Location) env.Env {
	if e.EarlyReturn() {
		return e
	}

	out, raised, failed := guard(d.lookup(f.Head), f)

	ev := event.Event{
		Message:  msg,
		Expected: out.Expected,
		Location: loc,
	}
	if ev.Expected == nil {
		ev.Expected = event.Source(f.Source())
	}
	switch {
	case failed:
		ev.Kind = event.KindError
		ev.Actual = raised
	case out.Pass:
		ev.Kind = event.KindPass
		ev.Actual = out.Actual
	default:
		ev.Kind = event.KindFail
		ev.Actual = out.Actual
	}
	return e.Report(ev)
}

func (d *Dispatcher) lookup(head string) Expansion {
	if head == "" {
		return d.fallback
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if x, ok := d.tags[head]; ok {
		return x
	}
	return d.fallback
}

// guard runs x inside the uncaught-failure boundary. An *Escape passes
// through; any other panic is returned as raised.
func guard(x Expansion, f Form) (out Outcome, raised any, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			if esc, ok := r.(*Escape); ok {
				panic(esc)
			}
			raised, failed = r, true
		}
	}()
	return x(f), nil, false
}

func callerLocation(skip int) *event.Location {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return nil
	}
	return &event.Location{File: filepath.Base(file), Line: line}
}

// Default is the dispatcher used by the package-level functions.
var Default = NewDispatcher()

// Register adds an expansion to the Default dispatcher.
func Register(tag string, x Expansion) error {
	return Default.Register(tag, x)
}

// Is expands f with the Default dispatcher.
func Is(e env.Env, f Form, msg string) env.Env {
	return Default.IsAt(e, f, msg, callerLocation(2))
}
