package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the inspected press's trace to help debug the failure.
type AssertionError struct {
	Type     string               // Assertion type for categorization
	Expected string               // Human-readable expected outcome
	Actual   string               // Human-readable actual outcome
	Trace    []engine.TracedPulse // Pulses of the inspected press
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nTrace of press %d:\n", e.Trace[0].Press)
		for _, tp := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", tp.Seq, tp.Pulse)
		}
	}

	return buf.String()
}

// ParsePulse parses "source -signal-> destination".
func ParsePulse(s string) (ir.Pulse, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return ir.Pulse{}, fmt.Errorf("pulse %q: want \"source -low-> destination\"", s)
	}
	arrow := fields[1]
	if !strings.HasPrefix(arrow, "-") || !strings.HasSuffix(arrow, "->") || len(arrow) < 4 {
		return ir.Pulse{}, fmt.Errorf("pulse %q: malformed arrow %q", s, arrow)
	}
	var sig ir.Signal
	if err := sig.UnmarshalText([]byte(arrow[1 : len(arrow)-2])); err != nil {
		return ir.Pulse{}, fmt.Errorf("pulse %q: %w", s, err)
	}
	return ir.Pulse{Source: fields[0], Destination: fields[2], Signal: sig}, nil
}

// pressRun is the state after running a scenario's wiring for some presses.
type pressRun struct {
	last  []engine.TracedPulse // pulses of the final press
	graph *engine.Graph
}

// evaluateAssertions checks every assertion and returns the failure
// messages. Runs are cached by press count so assertions on the same press
// share one simulation.
func (h *Harness) evaluateAssertions(ctx context.Context, assertions []Assertion) []string {
	var errs []string
	runs := make(map[int64]*pressRun)

	for i, a := range assertions {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
			break
		}

		press := a.Press
		if press == 0 {
			press = 1
		}
		run, ok := runs[press]
		if !ok {
			var err error
			run, err = h.runPresses(press)
			if err != nil {
				errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
				continue
			}
			runs[press] = run
		}

		if err := evaluateAssertion(run, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %s", i, a.Type, err.Error()))
		}
	}

	return errs
}

func (h *Harness) runPresses(presses int64) (*pressRun, error) {
	opts := []engine.Option{engine.WithLogger(h.logger)}
	if h.scenario.MaxPulses > 0 {
		opts = append(opts, engine.WithMaxPulsesPerTrigger(h.scenario.MaxPulses))
	}
	rec, g, err := record(h.list, presses, opts...)
	if err != nil {
		return nil, err
	}
	return &pressRun{last: rec.Press(presses), graph: g}, nil
}

// evaluateAssertion dispatches to the appropriate assertion function.
func evaluateAssertion(run *pressRun, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(run.last, a)
	case AssertTraceOrder:
		return assertTraceOrder(run.last, a)
	case AssertTraceCount:
		return assertTraceCount(run.last, a)
	case AssertFinalState:
		return assertFinalState(run.graph, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertTraceContains checks that the pulse was delivered at least once.
func assertTraceContains(trace []engine.TracedPulse, a Assertion) error {
	want, err := ParsePulse(a.Pulse)
	if err != nil {
		return err
	}
	for _, tp := range trace {
		if tp.Pulse == want {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: want.String(),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the pulses appear in the given order.
// Pulses need not be consecutive; each match must come after the previous
// one.
func assertTraceOrder(trace []engine.TracedPulse, a Assertion) error {
	pos := 0
	for i, s := range a.Pulses {
		want, err := ParsePulse(s)
		if err != nil {
			return err
		}
		found := false
		for pos < len(trace) {
			tp := trace[pos]
			pos++
			if tp.Pulse == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: strings.Join(a.Pulses, ", "),
				Actual:   fmt.Sprintf("%s (position %d) not found after %s", want, i+1, previous(a.Pulses, i)),
				Trace:    trace,
			}
		}
	}
	return nil
}

func previous(pulses []string, i int) string {
	if i == 0 {
		return "start of press"
	}
	return pulses[i-1]
}

// assertTraceCount checks that the pulse was delivered exactly Count times.
func assertTraceCount(trace []engine.TracedPulse, a Assertion) error {
	want, err := ParsePulse(a.Pulse)
	if err != nil {
		return err
	}
	count := 0
	for _, tp := range trace {
		if tp.Pulse == want {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d x %s", a.Count, want),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks a module's state (subset match on memory).
func assertFinalState(g *engine.Graph, a Assertion) error {
	m, ok := g.Module(a.Module)
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("module %s", a.Module),
			Actual:   "not a declared module",
		}
	}

	if a.On != nil {
		if m.Kind() != ir.KindFlipFlop {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s is a flip-flop", a.Module),
				Actual:   fmt.Sprintf("%s is a %s", a.Module, m.Kind()),
			}
		}
		if m.IsOn() != *a.On {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s on=%t", a.Module, *a.On),
				Actual:   fmt.Sprintf("%s on=%t", a.Module, m.IsOn()),
			}
		}
	}

	if len(a.Memory) > 0 {
		if m.Kind() != ir.KindConjunction {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s is a conjunction", a.Module),
				Actual:   fmt.Sprintf("%s is a %s", a.Module, m.Kind()),
			}
		}
		inputs := make([]string, 0, len(a.Memory))
		for in := range a.Memory {
			inputs = append(inputs, in)
		}
		sort.Strings(inputs)
		for _, in := range inputs {
			want := a.Memory[in]
			got, ok := m.Memory(in)
			if !ok {
				return &AssertionError{
					Type:     AssertFinalState,
					Expected: fmt.Sprintf("%s remembers %s", a.Module, in),
					Actual:   fmt.Sprintf("%s is not an input of %s", in, a.Module),
				}
			}
			if got != want {
				return &AssertionError{
					Type:     AssertFinalState,
					Expected: fmt.Sprintf("%s[%s]=%s", a.Module, in, want),
					Actual:   fmt.Sprintf("%s[%s]=%s", a.Module, in, got),
				}
			}
		}
	}

	return nil
}
