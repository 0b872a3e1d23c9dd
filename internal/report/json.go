package report

import (
	"io"
	"sync"

	"github.com/roach88/unitrun/internal/event"
)

// JSON writes every event as one line of canonical JSON.
//
// The first encoding or write error is kept and returned by Err; later events
// are still attempted.
//
// Thread-safety: Report serializes writes with an internal mutex.
type JSON struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewJSON creates a JSON lines reporter writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w}
}

// Report writes ev as a JSON line.
func (j *JSON) Report(ev event.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := event.MarshalCanonical(ev)
	if err != nil {
		j.keep(err)
		return
	}
	data = append(data, '\n')
	if _, err := j.w.Write(data); err != nil {
		j.keep(err)
	}
}

// Err returns the first error encountered, if any.
func (j *JSON) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *JSON) keep(err error) {
	if j.err == nil {
		j.err = err
	}
}
