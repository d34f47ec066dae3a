// Package ir provides the shared data types of the pulse network.
//
// All other internal packages import ir; ir imports nothing internal. This
// keeps the wiring model (what a parser produces) separate from the engine
// that simulates it.
//
// Key design constraints:
//   - Module identity is the module name; there are no numeric ids.
//   - Output order is significant and preserved exactly as declared.
//   - Hashes use canonical JSON with domain separation, never fmt output.
package ir
