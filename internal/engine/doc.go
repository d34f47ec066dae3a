// Package engine implements the pulse network simulator.
//
// A Graph owns every module and its wiring. An Engine drives the graph one
// trigger at a time: it seeds a single low pulse into the broadcaster and
// drains a FIFO queue of pulses until it is empty (quiescence).
//
// ARCHITECTURE:
//
// Single Global FIFO:
// Every pulse produced during a trigger is appended to one shared queue and
// delivered in enqueue order. All pulses generated at depth k are therefore
// delivered before any pulse of depth k+1. Conjunction outputs depend on
// this order; the queue must never be partitioned, batched or reordered.
//
// Module Isolation:
// A module only mutates its own state. Reactions are returned as pulses and
// the engine enqueues them; a module never touches another module or the
// queue.
//
// Two Query Modes:
//   - Aggregate (mode A): total low and high pulses over N triggers. Graph
//     snapshots taken after each trigger are recorded in a StateHistory; the
//     first repeated snapshot closes a loop and the remaining triggers are
//     extrapolated instead of simulated.
//   - PeriodFinder (mode B): the first trigger on which a convergence
//     conjunction sees every input high. Each input edge is timed in
//     isolation from a reset graph and the periods are combined by LCM.
//     This is only correct when each input is a counter that fires with a
//     fixed period from trigger zero; BruteForce is the literal check.
//
// Determinism:
// No randomness, no concurrency, no wall-clock time. Running the same
// triggers from the same state always yields the same counts and the same
// snapshots. Callers must not mutate a graph while a trigger is running.
package engine
