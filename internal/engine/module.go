package engine

import (
	"slices"

	"github.com/roach88/pulsenet/internal/ir"
)

// Module is one node of the pulse network. The variant is selected by Kind
// and every operation switches on it:
//
//   - Broadcast forwards each pulse unchanged to every output.
//   - FlipFlop ignores high pulses; a low pulse toggles it and it emits
//     high if it is now on, low otherwise.
//   - Conjunction remembers the last signal from each input and emits low
//     only when every remembered signal is high.
type Module struct {
	name    string
	kind    ir.ModuleKind
	outputs []string

	// FlipFlop state.
	on bool

	// Conjunction state. inputs is sorted and memory[i] belongs to inputs[i];
	// highs counts the High entries so the all-high check is O(1).
	inputs []string
	slot   map[string]int
	memory []ir.Signal
	highs  int
}

// NewModule creates a module at rest with no connected inputs.
func NewModule(spec ir.ModuleSpec) *Module {
	return &Module{
		name:    spec.Name,
		kind:    spec.Kind,
		outputs: slices.Clone(spec.Outputs),
	}
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Kind returns the module variant.
func (m *Module) Kind() ir.ModuleKind { return m.kind }

// Outputs returns the declared outputs in order. Callers must not modify it.
func (m *Module) Outputs() []string { return m.outputs }

// IsOn reports the flip-flop state. Always false for other kinds.
func (m *Module) IsOn() bool { return m.on }

// Inputs returns the connected inputs of a conjunction, sorted by name.
func (m *Module) Inputs() []string { return slices.Clone(m.inputs) }

// Memory returns the remembered signal for a conjunction input.
func (m *Module) Memory(source string) (ir.Signal, bool) {
	i, ok := m.slot[source]
	if !ok {
		return ir.Low, false
	}
	return m.memory[i], true
}

// ConnectInputs sets the distinct predecessors a conjunction remembers and
// resets every remembered signal to Low. It is a no-op for other kinds.
func (m *Module) ConnectInputs(inputs []string) {
	if m.kind != ir.KindConjunction {
		return
	}
	sorted := slices.Clone(inputs)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	m.inputs = sorted
	m.slot = make(map[string]int, len(sorted))
	for i, in := range sorted {
		m.slot[in] = i
	}
	m.memory = make([]ir.Signal, len(sorted))
	m.highs = 0
}

// Reset returns the module to rest: flip-flops off, conjunction memory all
// Low. Wiring is untouched.
func (m *Module) Reset() {
	m.on = false
	for i := range m.memory {
		m.memory[i] = ir.Low
	}
	m.highs = 0
}

// React applies one incoming pulse and returns the pulses the module emits,
// in output order.
func (m *Module) React(source string, signal ir.Signal) []ir.Pulse {
	return m.appendReaction(nil, source, signal)
}

// appendReaction is React appending into dst, so the engine can reuse one
// buffer across pulses.
func (m *Module) appendReaction(dst []ir.Pulse, source string, signal ir.Signal) []ir.Pulse {
	var out ir.Signal

	switch m.kind {
	case ir.KindBroadcast:
		out = signal

	case ir.KindFlipFlop:
		if signal == ir.High {
			return dst
		}
		m.on = !m.on
		out = ir.Low
		if m.on {
			out = ir.High
		}

	case ir.KindConjunction:
		// Pulses from untracked sources leave memory alone, keeping exactly
		// one entry per predecessor.
		if i, ok := m.slot[source]; ok && m.memory[i] != signal {
			if signal == ir.High {
				m.highs++
			} else {
				m.highs--
			}
			m.memory[i] = signal
		}
		out = ir.High
		if m.highs == len(m.memory) {
			out = ir.Low
		}

	default:
		return dst
	}

	for _, dest := range m.outputs {
		dst = append(dst, ir.Pulse{Source: m.name, Destination: dest, Signal: out})
	}
	return dst
}

// stateBits returns how many bits appendState writes.
func (m *Module) stateBits() int {
	switch m.kind {
	case ir.KindFlipFlop:
		return 1
	case ir.KindConjunction:
		return len(m.memory)
	default:
		return 0
	}
}

// appendState writes the module's mutable state: one bit for a flip-flop,
// one bit per input (in sorted input order) for a conjunction.
func (m *Module) appendState(w *bitWriter) {
	switch m.kind {
	case ir.KindFlipFlop:
		w.write(m.on)
	case ir.KindConjunction:
		for _, s := range m.memory {
			w.write(s == ir.High)
		}
	}
}
