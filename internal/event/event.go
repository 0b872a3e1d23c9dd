package event

import "fmt"

// Kind discriminates outcome events.
type Kind string

// Event kinds.
const (
	KindPass          Kind = "pass"
	KindFail          Kind = "fail"
	KindError         Kind = "error"
	KindBeginTestUnit Kind = "begin-test-unit"
	KindEndTestUnit   Kind = "end-test-unit"
	KindBeginGroup    Kind = "begin-group"
	KindEndGroup      Kind = "end-group"
	KindSummary       Kind = "summary"
)

// IsOutcome reports whether k is an assertion outcome (pass, fail or error).
func (k Kind) IsOutcome() bool {
	return k == KindPass || k == KindFail || k == KindError
}

// Location is a best-effort source position for an assertion.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// String renders the location as file:line.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Event is the immutable record of one assertion or lifecycle occurrence.
// Only the fields relevant to Kind are populated.
type Event struct {
	Kind Kind

	// Message is the optional assertion message.
	Message string

	// Expected is the representation of the asserted form.
	Expected any

	// Actual is the evaluated result, the produced witness, or for error
	// events the captured failure value itself.
	Actual any

	// Location is where the assertion was made. May be nil.
	Location *Location

	// Units is the trail of in-flight units, outermost first.
	Units []string

	// Contexts is the stack of nesting-context strings, outermost first.
	Contexts []string

	// Group is set on begin-group and end-group events.
	Group string

	// Unit is set on begin-test-unit and end-test-unit events.
	Unit string

	// Counts is set on summary events.
	Counts Counts

	// RunID identifies the run that emitted the event.
	RunID string
}

// Counts aggregates the run counters.
type Counts struct {
	Units int `json:"units"`
	Pass  int `json:"pass"`
	Fail  int `json:"fail"`
	Error int `json:"error"`
}

// Assertions returns the total number of assertion outcomes.
func (c Counts) Assertions() int {
	return c.Pass + c.Fail + c.Error
}

// Add returns c with the counter for kind incremented by one.
// Kinds other than pass, fail and error leave c unchanged.
func (c Counts) Add(kind Kind) Counts {
	switch kind {
	case KindPass:
		c.Pass++
	case KindFail:
		c.Fail++
	case KindError:
		c.Error++
	}
	return c
}

// IsSuccessful reports whether a run with counts c had no failures and no
// errors. Unit and pass counts do not matter; an empty run is successful.
func IsSuccessful(c Counts) bool {
	return c.Fail == 0 && c.Error == 0
}

// Reporter consumes outcome events.
type Reporter interface {
	Report(ev Event)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(ev Event)

// Report calls f(ev).
func (f ReporterFunc) Report(ev Event) {
	f(ev)
}
