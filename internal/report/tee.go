package report

import "github.com/roach88/unitrun/internal/event"

// Tee reports every event to each of its reporters, in order.
type Tee []event.Reporter

// Report forwards ev.
func (t Tee) Report(ev event.Event) {
	for _, r := range t {
		r.Report(ev)
	}
}

// Discard drops every event.
var Discard event.Reporter = event.ReporterFunc(func(event.Event) {})
