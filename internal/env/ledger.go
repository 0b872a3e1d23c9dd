package env

import (
	"sync"

	"github.com/roach88/unitrun/internal/event"
)

// ledger mirrors every counter increment of a run.
//
// Thread-safety: guarded by mu. The engine runs units sequentially; the lock
// only matters if a reporter or body hands the Env to another goroutine.
type ledger struct {
	mu      sync.Mutex
	counts  event.Counts
	returns int // early-return requests
}

func (l *ledger) add(kind event.Kind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts = l.counts.Add(kind)
}

func (l *ledger) addUnit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts.Units++
}

func (l *ledger) addReturn() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.returns++
}

func (l *ledger) snapshot() Mark {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Mark{at: l.counts, returns: l.returns}
}
