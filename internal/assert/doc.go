// Package assert implements the assertion dispatcher.
//
// An assertion is a [Form]: a head symbol with operands, or a bare
// expression. The dispatcher selects an expansion strategy by exact match of
// the form's head against a table of tags; when no tag matches, the catch-all
// strategy evaluates the form as a predicate call or as a bare value.
//
// # Built-in tags
//
//   - instance?: the object's runtime type is assignable to the given type
//   - thrown?: the body raises an error matching the given matcher
//   - thrown-with-message?: as thrown?, and the message matches a pattern
//
// A raise is a panic, or a non-nil error returned by the body.
//
// # Extending
//
// New tags are added with [Dispatcher.Register] before any assertion uses
// them. Registration never touches existing entries:
//
//	d := assert.NewDispatcher()
//	err := d.Register("even?", func(f assert.Form) assert.Outcome {
//	    n := f.Args[0].Eval().(int)
//	    return assert.Outcome{Pass: n%2 == 0, Actual: n}
//	})
//
// # Failure boundary
//
// Every expansion runs inside an uncaught-failure boundary. A panic escaping
// an expansion is reported as an error event and the run continues. The one
// exception is a raise inside thrown? that does not match the expected type:
// it leaves the assertion as an [Escape] and is reported by the enclosing
// unit boundary instead.
package assert
