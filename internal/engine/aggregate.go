package engine

import (
	"context"
	"fmt"
)

// Totals is the result of Aggregate.
type Totals struct {
	// Presses is the number of triggers the totals cover.
	Presses int64 `json:"presses"`

	// Simulated is how many triggers were actually run.
	Simulated int64 `json:"simulated"`

	Low  int64 `json:"low"`
	High int64 `json:"high"`

	// Looped reports whether a repeated state was found. When true the
	// state after press LoopStart+LoopLength equals the state after press
	// LoopStart (0 is the state before the first press).
	Looped     bool  `json:"looped"`
	LoopStart  int64 `json:"loop_start"`
	LoopLength int64 `json:"loop_length"`

	// PerTrigger holds the counts of every simulated trigger, in order.
	PerTrigger []Counts `json:"-"`
}

// Product returns Low * High. Aggregate guarantees it fits in int64.
func (t Totals) Product() int64 {
	return t.Low * t.High
}

// Aggregate returns the total low and high pulses over n triggers starting
// from the engine's current state.
//
// Triggers are simulated one at a time and the graph snapshot after each is
// recorded (the starting state is index 0). Once a snapshot repeats, the
// remaining triggers are extrapolated: presses before the loop count once,
// presses inside the loop count once per full cycle, and the first
// (n - loopStart) % loopLength of them count once more. Without a repeat
// every simulated trigger counts exactly once.
//
// The engine is left in the state after the last simulated trigger, which
// is not the state after n triggers when a loop was found.
func Aggregate(ctx context.Context, e *Engine, n int64) (Totals, error) {
	if n < 0 {
		return Totals{}, NewInvalidArgumentError(fmt.Sprintf("negative press count %d", n))
	}

	g := e.Graph()
	history := NewStateHistory()
	history.Record(g.Snapshot(), 0)

	t := Totals{Presses: n}
	for i := int64(1); i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return Totals{}, err
		}
		r, err := e.RunTrigger()
		if err != nil {
			return Totals{}, fmt.Errorf("press %d: %w", i, err)
		}
		t.PerTrigger = append(t.PerTrigger, r.Counts)

		if start, seen := history.Record(g.Snapshot(), i); seen {
			t.Looped = true
			t.LoopStart = start
			t.LoopLength = i - start
			break
		}
	}
	t.Simulated = int64(len(t.PerTrigger))

	if t.Looped {
		e.logger.Info("state loop detected",
			"loop_start", t.LoopStart,
			"loop_length", t.LoopLength,
			"simulated", t.Simulated)
	}

	if err := t.sum(); err != nil {
		return Totals{}, err
	}
	if _, ok := mulInt64(t.Low, t.High); !ok {
		return Totals{}, NewOverflowError("pulse product")
	}
	return t, nil
}

// sum fills Low and High from PerTrigger using the loop multipliers.
func (t *Totals) sum() error {
	var full, rem int64
	if t.Looped {
		full = (t.Presses - t.LoopStart) / t.LoopLength
		rem = (t.Presses - t.LoopStart) % t.LoopLength
	}

	for i, c := range t.PerTrigger {
		idx := int64(i)
		mult := int64(1)
		if t.Looped && idx >= t.LoopStart {
			mult = full
			if idx-t.LoopStart < rem {
				mult++
			}
		}

		low, ok1 := mulInt64(c.Low, mult)
		high, ok2 := mulInt64(c.High, mult)
		if !ok1 || !ok2 {
			return NewOverflowError("pulse count")
		}
		var ok3, ok4 bool
		t.Low, ok3 = addInt64(t.Low, low)
		t.High, ok4 = addInt64(t.High, high)
		if !ok3 || !ok4 {
			return NewOverflowError("pulse count")
		}
	}
	return nil
}
