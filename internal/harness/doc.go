// Package harness runs YAML conformance scenarios against the simulator.
//
// A scenario names a wiring (inline or a file next to the scenario), the
// questions to ask and the answers expected:
//
//	name: output-example
//	description: four-press loop driving an undeclared sink
//	wiring: |
//	  broadcaster -> a
//	  %a -> inv, con
//	  &inv -> b
//	  %b -> con
//	  &con -> output
//	presses: 1000
//	expect:
//	  product: 11687500
//	  loop_start: 0
//	  loop_length: 4
//	assertions:
//	  - type: trace_contains
//	    press: 1
//	    pulse: "con -low-> output"
//
// Every question runs on a freshly built graph, so mode A, mode B and the
// trace assertions never observe each other's state.
//
// Pulse traces can be pinned with golden files (testdata/golden) via
// AssertGoldenTrace; regenerate them with
//
//	go test ./internal/harness -update
package harness
