package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/roach88/unitrun/internal/event"
)

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Text renders events as human-readable text.
//
// Pass events print nothing. Fail and error events print a diagnostic block:
// the unit trail with file:line, the joined nesting contexts, the message, and
// the expected and actual values. Summary events print the unit and assertion
// totals followed by the failure and error counts.
//
// Thread-safety: Report serializes writes with an internal mutex.
type Text struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// TextOption configures a Text reporter.
type TextOption func(*Text)

// WithColor forces ANSI color on or off. By default color is used only when
// the writer is a terminal.
func WithColor(on bool) TextOption {
	return func(t *Text) {
		t.color = on
	}
}

// NewText creates a text reporter writing to w.
func NewText(w io.Writer, opts ...TextOption) *Text {
	t := &Text{w: w, color: isTerminal(w)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Report renders ev.
func (t *Text) Report(ev event.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case event.KindFail:
		t.diagnostic("FAIL", ev)
		fmt.Fprintf(t.w, "  actual: %s\n", event.Repr(ev.Actual))
	case event.KindError:
		t.diagnostic("ERROR", ev)
		fmt.Fprintf(t.w, "  actual: %v\n", ev.Actual)
	case event.KindSummary:
		fmt.Fprintf(t.w, "\nRan %d tests containing %d assertions.\n", ev.Counts.Units, ev.Counts.Assertions())
		fmt.Fprintf(t.w, "%d failures, %d errors.\n", ev.Counts.Fail, ev.Counts.Error)
	case event.KindBeginGroup:
		fmt.Fprintf(t.w, "\nTesting %s\n", ev.Group)
	}
}

// diagnostic writes everything of a fail or error block except the actual line.
func (t *Text) diagnostic(label string, ev event.Event) {
	if t.color {
		label = ansiRed + label + ansiReset
	}
	fmt.Fprintf(t.w, "\n%s in (%s)", label, strings.Join(ev.Units, " "))
	if ev.Location != nil {
		fmt.Fprintf(t.w, " (%s)", ev.Location)
	}
	fmt.Fprintln(t.w)
	if len(ev.Contexts) > 0 {
		fmt.Fprintln(t.w, strings.Join(ev.Contexts, " "))
	}
	if ev.Message != "" {
		fmt.Fprintln(t.w, ev.Message)
	}
	fmt.Fprintf(t.w, "expected: %s\n", event.Repr(ev.Expected))
}
