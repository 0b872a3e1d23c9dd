// Package suite loads declarative test suites from YAML and expands them into
// runner units whose bodies call the assertion dispatcher.
//
// # Suite Format
//
//	group: arithmetic
//	description: "Integer arithmetic"
//	order: [addition, division]     # optional ordering hook
//	units:
//	  - name: addition
//	    assertions:
//	      - is: ["=", 4, ["+", 2, 2]]
//	        message: "two plus two"
//	      - testing: "with negatives"
//	        assertions:
//	          - is: ["=", 0, ["+", 2, -2]]
//	  - name: division
//	    assertions:
//	      - is: ["thrown?", "arithmetic", ["/", 1, 0]]
//	      - is: ["thrown-with-message?", "arithmetic", "divide by zero", ["/", 1, 0]]
//	  - name: everything
//	    run: [addition, division]
//
// A form is a YAML sequence whose first element names a function or an
// assertion tag. Any other YAML value is a literal; write a literal list of
// words with list, as in ["list", "a", "b"]. A unit with neither
// assertions nor run entries is a plain definition and is not run.
//
// # Functions
//
//	=  not=  <  >  <=  >=  +  -  *  /  not  nil?  empty?  count  str  contains?  list
//
// Evaluation failures panic with *EvalError, whose Kind is one of
// arithmetic, type or unresolved. thrown? matches raised values by kind:
//
//	["thrown?", "type", ["+", 1, "a"]]
//
// # Tags
//
// instance? takes a type name (int float string bool list map) and a value.
// thrown? and thrown-with-message? take an error kind (or "any"). Every other
// tag registered on the dispatcher receives its operands evaluated lazily.
package suite
