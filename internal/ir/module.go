package ir

import "fmt"

// ModuleKind discriminates the three module variants.
type ModuleKind int

const (
	// KindBroadcast forwards every pulse unchanged to all outputs.
	KindBroadcast ModuleKind = iota + 1
	// KindFlipFlop toggles on low pulses and ignores high pulses.
	KindFlipFlop
	// KindConjunction remembers the last signal from each input and emits
	// low only when every remembered signal is high.
	KindConjunction
)

// BroadcasterName is the literal name of the unprefixed module.
const BroadcasterName = "broadcaster"

// String returns the lower-case kind name used in CUE wiring and JSON output.
func (k ModuleKind) String() string {
	switch k {
	case KindBroadcast:
		return "broadcast"
	case KindFlipFlop:
		return "flipflop"
	case KindConjunction:
		return "conjunction"
	default:
		return fmt.Sprintf("ModuleKind(%d)", int(k))
	}
}

// Prefix returns the one-character wiring prefix ("" for broadcast).
func (k ModuleKind) Prefix() string {
	switch k {
	case KindFlipFlop:
		return "%"
	case KindConjunction:
		return "&"
	default:
		return ""
	}
}

// Stateful reports whether modules of this kind carry mutable state.
func (k ModuleKind) Stateful() bool {
	return k == KindFlipFlop || k == KindConjunction
}

// ParseModuleKind maps a kind name back to a ModuleKind.
func ParseModuleKind(name string) (ModuleKind, error) {
	switch name {
	case "broadcast":
		return KindBroadcast, nil
	case "flipflop":
		return KindFlipFlop, nil
	case "conjunction":
		return KindConjunction, nil
	default:
		return 0, fmt.Errorf("unknown module kind %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ModuleKind) MarshalText() ([]byte, error) {
	if k < KindBroadcast || k > KindConjunction {
		return nil, fmt.Errorf("invalid module kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ModuleKind) UnmarshalText(text []byte) error {
	parsed, err := ParseModuleKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ModuleSpec is one entry of the parsed module list: a declared module, its
// kind and its outputs in declared order.
type ModuleSpec struct {
	Name    string     `json:"name"`
	Kind    ModuleKind `json:"kind"`
	Outputs []string   `json:"outputs"`
}

// ModuleList is the parsed wiring, in declaration order.
type ModuleList []ModuleSpec

// Lookup returns the spec with the given name.
func (l ModuleList) Lookup(name string) (ModuleSpec, bool) {
	for _, m := range l {
		if m.Name == name {
			return m, true
		}
	}
	return ModuleSpec{}, false
}

// Predecessors derives, for every name used as an output, the distinct
// modules that target it in declaration order. Undeclared sinks are
// included.
func (l ModuleList) Predecessors() map[string][]string {
	preds := make(map[string][]string)
	seen := make(map[Edge]bool)
	for _, m := range l {
		for _, out := range m.Outputs {
			e := Edge{From: m.Name, To: out}
			if seen[e] {
				continue
			}
			seen[e] = true
			preds[out] = append(preds[out], m.Name)
		}
	}
	return preds
}
