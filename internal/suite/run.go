package suite

import (
	"github.com/roach88/unitrun/internal/assert"
	"github.com/roach88/unitrun/internal/env"
	"github.com/roach88/unitrun/internal/runner"
)

// Run expands suites and runs all their units with r, reporting through e.
// It fails only if a suite does not compile; test outcomes are in the
// returned Env.
func Run(e env.Env, d *assert.Dispatcher, r *runner.Runner, suites ...*Suite) (env.Env, error) {
	units, err := Units(d, r, suites...)
	if err != nil {
		return e, err
	}
	return r.RunAll(e, units), nil
}
