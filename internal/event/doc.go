// Package event defines the outcome events produced by assertions and by the
// test lifecycle, and the Reporter seam that consumes them.
//
// Every assertion and lifecycle point produces exactly one [Event]. Events are
// immutable once built: the unit trail and nesting contexts they carry are
// copies taken at emission time, so later changes to the execution context
// never leak into an event that has already been reported.
//
// # Kinds
//
//   - pass, fail, error: assertion outcomes (and the synthetic unit-level error)
//   - begin-test-unit, end-test-unit: around every unit invocation
//   - begin-group, end-group: around every group of units
//   - summary: aggregate counts after a run
//
// # Canonical encoding
//
// [MarshalCanonical] renders an event as canonical JSON (sorted keys, NFC
// strings, no HTML escaping). Identical runs produce byte-identical streams,
// which is what the JSON reporter and golden comparisons rely on.
package event
