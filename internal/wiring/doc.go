// Package wiring turns wiring descriptions into an ir.ModuleList and checks
// them for structural problems before simulation.
//
// Two formats are accepted.
//
// The line format, one module per line:
//
//	broadcaster -> a, b, c
//	%a -> b
//	&inv -> a
//
// where "%" declares a flip-flop, "&" a conjunction, and the unprefixed
// module must be named "broadcaster".
//
// The CUE format:
//
//	modules: {
//		broadcaster: {kind: "broadcast", outputs: ["a"]}
//		a: {kind: "flipflop", outputs: ["inv"]}
//		inv: {kind: "conjunction", outputs: ["a"]}
//	}
//
// Names used only as outputs are sinks. They are legal in both formats and
// reported by Diagnose rather than rejected.
package wiring
