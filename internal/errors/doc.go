// Package errors provides structured, actionable error messages for the
// reactive command line tools.
//
// Every error carries a code that maps to a registered template:
//   - runtime (R0xx): failures that escaped the reactive runtime
//   - scenario (S0xx): invalid scenario files
//   - config (C0xx): invalid reactive.yaml settings
//   - cli (X0xx): command line usage errors
//
// # Usage
//
//	err := errors.New("S004").
//	    WithLocation("counter.yaml", 12, 14).
//	    WithDetailf("memo %q reads unknown node %q", "total", "cont")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR S004: Unknown node reference
//	//
//	//   counter.yaml:12:14
//	//
//	//     10 │   - name: total
//	//     11 │     kind: memo
//	//   → 12 │     inputs: [cont]
//	//        │              ^
//	//
//	//   memo "total" reads unknown node "cont"
//	//
//	//   Hint: Declare nodes before the nodes that read them.
package errors
