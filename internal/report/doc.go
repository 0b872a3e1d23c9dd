// Package report provides the built-in reporters.
//
// A reporter consumes outcome events and decides how to render or aggregate
// them. Counting is done by the execution context before the reporter sees an
// event, so reporters only render; swapping one reporter for another never
// changes the counts a run ends with.
//
//   - [Text]: human-readable console output (default)
//   - [JSON]: one canonical JSON object per event
//   - [Recorder]: keeps events in memory, mostly for tests
//   - [Slog]: structured log records
//   - [Tee]: fans events out to several reporters
//   - [Discard]: drops everything
package report
