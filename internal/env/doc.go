// Package env provides the execution context threaded through every unit
// and every assertion of a run.
//
// An [Env] is a value. It is never mutated in place: each operation returns a
// new Env carrying the updated counters, unit trail, nesting contexts or
// early-return flag. Passing the Env down and taking the returned Env back is
// how state flows through fixtures, units and assertions without shared
// mutable memory.
//
// # Counters
//
// Every increment is mirrored into a run-scoped ledger. A unit boundary takes
// a [Mark] before the body runs and settles the returned Env against it with
// [Env.Settle], or rebuilds it with [Env.Reconcile] when the body panicked.
// Either way the final counts match the events reported, even those reported
// through an Env value the body dropped.
//
// # Early return
//
// [Env.Return] sets a cooperative short-circuit flag. Fixture wrappers, group
// runners and the assertion dispatcher check [Env.EarlyReturn] and hand the Env
// back unchanged instead of doing further work. Return requests are also
// recorded in the ledger, so a request made on a dropped Env is picked up at
// the next unit boundary.
package env
