// Package runner executes test units grouped by owning group.
//
// Each unit runs inside an uncaught-failure boundary: anything a body raises
// outside an assertion is reported as a single error event and the run moves
// on to the next unit. Fixtures registered for a group wrap the whole group
// (once) and every unit (each). Fixtures are trusted infrastructure, so a
// panicking fixture is not intercepted and aborts the run.
//
// # Ordering
//
// Units within a group run sorted by name and groups run sorted by id. A
// group that contains an ordering hook (Unit.Hook) does not run its units
// itself: the hook is invoked directly, without fixtures, and decides which
// units to run and in what order.
//
// # Counting
//
// A body's returned Env is not trusted for counts. RunUnit and RunGroup
// settle it against the run ledger, so pass, fail and error events reported
// through an Env the body dropped still count, and an early-return request
// made on a dropped Env still stops the run.
//
// # Usage
//
//	reg := runner.NewRegistry()
//	reg.Once("db", fixture.Around[env.Env](openDB, closeDB))
//
//	r := runner.New(runner.WithRegistry(reg))
//	final := r.RunAll(env.New(), units)
//	if !event.IsSuccessful(final.Counts()) {
//	    os.Exit(1)
//	}
package runner
