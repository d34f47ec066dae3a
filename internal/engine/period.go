package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/pulsenet/internal/ir"
)

// DefaultMaxPresses bounds every search in PeriodFinder and BruteForce.
// Counter subcircuits in this family have periods of a few thousand; a
// search that reaches the ceiling means the structure is not what the
// search assumes.
const DefaultMaxPresses = 1_000_000

// EdgePeriod is the first press, counted from rest, on which an edge
// carried a high pulse.
type EdgePeriod struct {
	Edge   ir.Edge `json:"edge"`
	Period int64   `json:"period"`
}

// PeriodFinder answers "on which press does the target first receive a low
// pulse" for networks shaped like a set of independent counters feeding one
// convergence conjunction.
//
// PRECONDITION: each input of the convergence node must fire high with a
// fixed period measured from rest (press 0). The finder does not verify
// this; BruteForce does, at full simulation cost.
type PeriodFinder struct {
	engine      *Engine
	target      string
	convergence string
	watched     []ir.Edge
	maxPresses  int64
}

// FinderOption allows configuration of a PeriodFinder.
type FinderOption func(*PeriodFinder)

// WithMaxPresses sets the per-edge search ceiling.
// Default: 1,000,000 (DefaultMaxPresses).
func WithMaxPresses(n int64) FinderOption {
	return func(f *PeriodFinder) {
		f.maxPresses = n
	}
}

// NewPeriodFinder resolves the convergence node for target and the edges
// feeding it.
//
// Returns ErrCodeUnknownModule if nothing drives target, and
// ErrCodeInvalidArgument for a non-positive press ceiling.
func NewPeriodFinder(e *Engine, target string, opts ...FinderOption) (*PeriodFinder, error) {
	f := &PeriodFinder{
		engine:     e,
		target:     target,
		maxPresses: DefaultMaxPresses,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxPresses <= 0 {
		return nil, NewInvalidArgumentError(fmt.Sprintf("max presses must be positive, got %d", f.maxPresses))
	}

	g := e.Graph()
	if len(g.Inputs(target)) == 0 {
		return nil, NewUnknownModuleError(target, "no module drives target")
	}

	f.convergence = ResolveConvergence(g, target)
	for _, p := range g.Inputs(f.convergence) {
		f.watched = append(f.watched, ir.Edge{From: p, To: f.convergence})
	}
	return f, nil
}

// ResolveConvergence walks back from target while the current node has
// exactly one predecessor and that predecessor is a conjunction. In the
// canonical network "rx" is fed only by a conjunction, which is returned.
func ResolveConvergence(g *Graph, target string) string {
	cur := target
	visited := map[string]bool{cur: true}
	for {
		preds := g.Inputs(cur)
		if len(preds) != 1 {
			return cur
		}
		m, ok := g.Module(preds[0])
		if !ok || m.Kind() != ir.KindConjunction || visited[preds[0]] {
			return cur
		}
		cur = preds[0]
		visited[cur] = true
	}
}

// Target returns the module the question is about.
func (f *PeriodFinder) Target() string { return f.target }

// Convergence returns the node whose input edges are timed.
func (f *PeriodFinder) Convergence() string { return f.convergence }

// Watched returns the edges whose first high pulse is searched for.
func (f *PeriodFinder) Watched() []ir.Edge { return slices.Clone(f.watched) }

// Periods times every watched edge. Before each edge the engine is reset,
// so every period is measured from rest. The engine is reset again before
// returning.
//
// Returns AssumptionError listing the first edge that did not fire within
// the press ceiling.
func (f *PeriodFinder) Periods(ctx context.Context) ([]EdgePeriod, error) {
	defer f.engine.Reset()

	periods := make([]EdgePeriod, 0, len(f.watched))
	for _, edge := range f.watched {
		period, err := firstHigh(ctx, f.engine, []ir.Edge{edge}, f.maxPresses)
		if err != nil {
			return nil, err
		}
		f.engine.logger.Info("edge period found",
			"edge", edge.String(),
			"period", period)
		periods = append(periods, EdgePeriod{Edge: edge, Period: period})
	}
	return periods, nil
}

// Answer returns the LCM of all edge periods.
func (f *PeriodFinder) Answer(ctx context.Context) (int64, error) {
	periods, err := f.Periods(ctx)
	if err != nil {
		return 0, err
	}
	values := make([]int64, len(periods))
	for i, p := range periods {
		values[i] = p.Period
	}
	return LCM(values...)
}

// BruteForce resets the engine and presses until a single press carries a
// high pulse on every input edge of convergence. It is the literal answer
// the LCM shortcut approximates and costs one trigger per press.
//
// The engine is reset again before returning.
func BruteForce(ctx context.Context, e *Engine, convergence string, maxPresses int64) (int64, error) {
	if maxPresses <= 0 {
		return 0, NewInvalidArgumentError(fmt.Sprintf("max presses must be positive, got %d", maxPresses))
	}
	inputs := e.Graph().Inputs(convergence)
	if len(inputs) == 0 {
		return 0, NewUnknownModuleError(convergence, "no module drives convergence node")
	}
	edges := make([]ir.Edge, len(inputs))
	for i, p := range inputs {
		edges[i] = ir.Edge{From: p, To: convergence}
	}

	defer e.Reset()
	return firstHigh(ctx, e, edges, maxPresses)
}

// firstHigh resets e and returns the first press during which every edge
// in edges carried at least one high pulse.
func firstHigh(ctx context.Context, e *Engine, edges []ir.Edge, maxPresses int64) (int64, error) {
	e.Reset()

	index := make(map[ir.Edge]int, len(edges))
	for i, edge := range edges {
		index[edge] = i
	}
	fired := make([]bool, len(edges))
	ever := make([]bool, len(edges))
	count := 0

	remove := e.Observe(PulseFunc(func(_ int64, p ir.Pulse) {
		if p.Signal != ir.High {
			return
		}
		i, ok := index[ir.Edge{From: p.Source, To: p.Destination}]
		if ok && !fired[i] {
			fired[i] = true
			ever[i] = true
			count++
		}
	}))
	defer remove()

	for press := int64(1); press <= maxPresses; press++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		clear(fired)
		count = 0

		if _, err := e.RunTrigger(); err != nil {
			return 0, fmt.Errorf("press %d: %w", press, err)
		}
		if count == len(edges) {
			return press, nil
		}
	}

	// Report the edges that never fired; if each fired at some point but
	// never together, all of them are at fault.
	var missing []ir.Edge
	for i, edge := range edges {
		if !ever[i] {
			missing = append(missing, edge)
		}
	}
	if len(missing) == 0 {
		missing = slices.Clone(edges)
	}
	return 0, &AssumptionError{Edges: missing, MaxPresses: maxPresses}
}
