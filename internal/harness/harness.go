package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/logging"
)

// Harness executes one scenario. Each query builds its own graph from the
// parsed wiring so no query sees another's module state.
type Harness struct {
	scenario *Scenario
	list     ir.ModuleList
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the wiring (inline or file)
//  2. Run the aggregate query if presses is set
//  3. Run the convergence query if target is set (plus brute force if verify)
//  4. Evaluate assertions, each on a fresh graph
//
// Simulation errors are recorded in the result, not returned: a scenario
// may expect one via expect.error. The returned error is reserved for
// scenarios that cannot run at all.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	list, err := scenario.ModuleList()
	if err != nil {
		return nil, fmt.Errorf("failed to load wiring: %w", err)
	}
	if _, err := engine.NewGraph(list); err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	h := &Harness{
		scenario: scenario,
		list:     list,
		logger:   logging.NewNop(),
	}

	result := NewResult()
	stopped := false
	if scenario.Presses > 0 {
		stopped = h.runAggregate(ctx, result)
	}
	if !stopped && scenario.Target != "" {
		h.runConverge(ctx, result)
	}

	for _, msg := range h.evaluateAssertions(ctx, scenario.Assertions) {
		result.Failf("%s", msg)
	}

	if want := scenario.Expect.Error; want != "" && result.ErrorCode == "" {
		result.Failf("expected error %s, all queries succeeded", want)
	}

	return result, nil
}

// newEngine builds a fresh graph and engine with the scenario's limits.
func (h *Harness) newEngine(opts ...engine.Option) (*engine.Engine, error) {
	g, err := engine.NewGraph(h.list)
	if err != nil {
		return nil, err
	}
	base := []engine.Option{engine.WithLogger(h.logger)}
	if h.scenario.MaxPulses > 0 {
		base = append(base, engine.WithMaxPulsesPerTrigger(h.scenario.MaxPulses))
	}
	return engine.New(g, append(base, opts...)...), nil
}

// runAggregate answers the aggregate query and compares it against the
// expectations. Returns true if the query stopped with an error.
func (h *Harness) runAggregate(ctx context.Context, result *Result) bool {
	e, err := h.newEngine()
	if err != nil {
		return h.fail(result, "aggregate", err)
	}

	totals, err := engine.Aggregate(ctx, e, h.scenario.Presses)
	if err != nil {
		return h.fail(result, "aggregate", err)
	}
	result.Totals = &totals

	exp := h.scenario.Expect
	checkInt(result, "product", exp.Product, totals.Product())
	checkInt(result, "low", exp.Low, totals.Low)
	checkInt(result, "high", exp.High, totals.High)

	if exp.LoopStart != nil || exp.LoopLength != nil {
		if !totals.Looped {
			result.Failf("loop: expected a repeated state, none found in %d presses", totals.Simulated)
		} else {
			checkInt(result, "loop_start", exp.LoopStart, totals.LoopStart)
			checkInt(result, "loop_length", exp.LoopLength, totals.LoopLength)
		}
	}

	for i, want := range exp.Triggers {
		if i >= len(totals.PerTrigger) {
			result.Failf("triggers: expected %d presses, only %d simulated", len(exp.Triggers), len(totals.PerTrigger))
			break
		}
		got := totals.PerTrigger[i]
		if got.Low != want.Low || got.High != want.High {
			result.Failf("triggers[%d]: expected low=%d high=%d, got low=%d high=%d",
				i+1, want.Low, want.High, got.Low, got.High)
		}
	}

	return false
}

// runConverge answers the convergence query and, if requested, checks it
// against brute force.
func (h *Harness) runConverge(ctx context.Context, result *Result) {
	e, err := h.newEngine()
	if err != nil {
		h.fail(result, "converge", err)
		return
	}

	maxPresses := int64(engine.DefaultMaxPresses)
	if h.scenario.MaxPresses > 0 {
		maxPresses = h.scenario.MaxPresses
	}

	finder, err := engine.NewPeriodFinder(e, h.scenario.Target, engine.WithMaxPresses(maxPresses))
	if err != nil {
		h.fail(result, "converge", err)
		return
	}
	periods, err := finder.Periods(ctx)
	if err != nil {
		h.fail(result, "converge", err)
		return
	}
	values := make([]int64, len(periods))
	for i, p := range periods {
		values[i] = p.Period
	}
	answer, err := engine.LCM(values...)
	if err != nil {
		h.fail(result, "converge", err)
		return
	}
	result.Answer = &answer
	result.Periods = periods

	exp := h.scenario.Expect
	checkInt(result, "answer", exp.Answer, answer)

	byFrom := make(map[string]int64, len(periods))
	for _, p := range periods {
		byFrom[p.Edge.From] = p.Period
	}
	for from, want := range exp.Periods {
		got, ok := byFrom[from]
		if !ok {
			result.Failf("periods: %s does not feed %s", from, finder.Convergence())
			continue
		}
		if got != want {
			result.Failf("periods[%s]: expected %d, got %d", from, want, got)
		}
	}

	if !h.scenario.Verify {
		return
	}
	brute, err := engine.BruteForce(ctx, e, finder.Convergence(), maxPresses)
	if err != nil {
		h.fail(result, "verify", err)
		return
	}
	if brute != answer {
		result.Failf("verify: brute force found press %d, LCM gave %d", brute, answer)
	}
}

// fail records a query error. An error matching expect.error is the
// expected outcome and does not fail the result.
func (h *Harness) fail(result *Result, query string, err error) bool {
	code := errorCode(err)
	if result.ErrorCode == "" {
		result.ErrorCode = code
	}
	if code != "" && code == h.scenario.Expect.Error {
		return true
	}
	result.Failf("%s: %v", query, err)
	return true
}

func checkInt(result *Result, field string, want *int64, got int64) {
	if want != nil && *want != got {
		result.Failf("%s: expected %d, got %d", field, *want, got)
	}
}

// errorCode maps a simulation error to its RuntimeErrorCode, or "" for
// errors outside the engine (cancellation, I/O).
func errorCode(err error) string {
	var re *engine.RuntimeError
	switch {
	case errors.As(err, &re):
		return string(re.Code)
	case engine.IsAssumptionError(err):
		return string(engine.ErrCodeAssumptionViolated)
	case engine.IsQuotaError(err):
		return string(engine.ErrCodeQuotaExceeded)
	}
	return ""
}

func knownErrorCode(code string) bool {
	switch engine.RuntimeErrorCode(code) {
	case engine.ErrCodeUnknownModule,
		engine.ErrCodeAssumptionViolated,
		engine.ErrCodeQuotaExceeded,
		engine.ErrCodeInvalidArgument,
		engine.ErrCodeOverflow:
		return true
	}
	return false
}

// Trace runs presses triggers on a fresh graph built from list and returns
// every delivered pulse in order.
func Trace(list ir.ModuleList, presses int64, opts ...engine.Option) ([]engine.TracedPulse, error) {
	rec, _, err := record(list, presses, opts...)
	if err != nil {
		return nil, err
	}
	return rec.Pulses, nil
}

func record(list ir.ModuleList, presses int64, opts ...engine.Option) (*engine.Recorder, *engine.Graph, error) {
	if presses < 0 {
		return nil, nil, engine.NewInvalidArgumentError(fmt.Sprintf("presses must not be negative, got %d", presses))
	}
	g, err := engine.NewGraph(list)
	if err != nil {
		return nil, nil, err
	}
	rec := engine.NewRecorder()
	e := engine.New(g, append(slices.Clone(opts), engine.WithObserver(rec))...)
	for i := int64(0); i < presses; i++ {
		if _, err := e.RunTrigger(); err != nil {
			return rec, g, fmt.Errorf("press %d: %w", i+1, err)
		}
	}
	return rec, g, nil
}
