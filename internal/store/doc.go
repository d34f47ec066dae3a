// Package store provides the SQLite run journal.
//
// A journal records what a simulator run was asked and what it answered:
//   - Runs: mode, wiring text and hash, options, presses, answer, loop
//   - Triggers: per-press pulse counts and state digest (aggregate runs)
//   - Periods: first high press per watched edge (converge runs)
//
// A journal is enough to replay a run and check that the engine still
// produces the same counts, states and periods.
//
// # Ordering
//
// Every query orders by press number or by id COLLATE BINARY, never by
// insertion time, so reads are identical across replays. Run ids are
// UUIDv7 and therefore sort by creation time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Wiring hashes and state digests are computed in internal/ir using
// RFC 8785 canonical JSON and SHA-256 with domain separation.
package store
