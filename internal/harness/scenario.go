package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/wiring"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Wiring is inline wiring in the line format.
	Wiring string `yaml:"wiring,omitempty"`

	// WiringFile is a wiring file (line format or .cue). Relative paths are
	// resolved against the scenario file's directory.
	WiringFile string `yaml:"wiring_file,omitempty"`

	// Presses runs the aggregate query over this many presses. Zero skips it.
	Presses int64 `yaml:"presses,omitempty"`

	// Target runs the convergence query for this module. Empty skips it.
	Target string `yaml:"target,omitempty"`

	// MaxPresses bounds the convergence search. Zero means the engine default.
	MaxPresses int64 `yaml:"max_presses,omitempty"`

	// Verify also runs the brute-force convergence search and requires it
	// to agree with the LCM answer.
	Verify bool `yaml:"verify,omitempty"`

	// MaxPulses overrides the per-trigger pulse quota. Zero means the
	// engine default.
	MaxPulses int64 `yaml:"max_pulses,omitempty"`

	// Expect holds the expected answers.
	Expect Expect `yaml:"expect"`

	// Assertions check individual pulses and module states.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect lists expected answers. Nil fields are not checked.
type Expect struct {
	// Aggregate query.
	Product    *int64          `yaml:"product,omitempty"`
	Low        *int64          `yaml:"low,omitempty"`
	High       *int64          `yaml:"high,omitempty"`
	LoopStart  *int64          `yaml:"loop_start,omitempty"`
	LoopLength *int64          `yaml:"loop_length,omitempty"`
	Triggers   []TriggerCounts `yaml:"triggers,omitempty"`

	// Convergence query.
	Answer  *int64           `yaml:"answer,omitempty"`
	Periods map[string]int64 `yaml:"periods,omitempty"` // keyed by predecessor name

	// Error is the code the first failing query must stop with, e.g.
	// PULSE_QUOTA_EXCEEDED. Empty means no query may fail.
	Error string `yaml:"error,omitempty"`
}

// TriggerCounts is the expected pulse count of one press.
type TriggerCounts struct {
	Low  int64 `yaml:"low"`
	High int64 `yaml:"high"`
}

// Assertion checks the pulse trace or module state after some presses.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Pulse is delivered during Press
	// - "trace_order": Pulses are delivered in this order during Press
	// - "trace_count": Pulse is delivered exactly Count times during Press
	// - "final_state": Module state after Press presses
	Type string `yaml:"type"`

	// Press selects the press to inspect. Defaults to 1.
	Press int64 `yaml:"press,omitempty"`

	// Pulse is "source -signal-> destination" (trace_contains, trace_count).
	Pulse string `yaml:"pulse,omitempty"`

	// Pulses is the expected order (trace_order).
	Pulses []string `yaml:"pulses,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Module, On and Memory describe the expected state (final_state).
	// On applies to flip-flops, Memory to conjunctions ("low"/"high" per
	// input, subset match).
	Module string               `yaml:"module,omitempty"`
	On     *bool                `yaml:"on,omitempty"`
	Memory map[string]ir.Signal `yaml:"memory,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "loop_len:" vs "loop_length:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.WiringFile != "" && !filepath.IsAbs(scenario.WiringFile) {
		scenario.WiringFile = filepath.Join(filepath.Dir(path), scenario.WiringFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ModuleList returns the scenario's parsed wiring.
func (s *Scenario) ModuleList() (ir.ModuleList, error) {
	if s.WiringFile != "" {
		return wiring.LoadFile(s.WiringFile)
	}
	return wiring.ParseString(s.Wiring)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Wiring == "" && s.WiringFile == "":
		return fmt.Errorf("one of wiring or wiring_file is required")
	case s.Wiring != "" && s.WiringFile != "":
		return fmt.Errorf("wiring and wiring_file are mutually exclusive")
	}

	if s.WiringFile != "" {
		if _, err := os.Stat(s.WiringFile); os.IsNotExist(err) {
			return fmt.Errorf("wiring file not found: %s", s.WiringFile)
		}
	}

	if s.Presses < 0 {
		return fmt.Errorf("presses must not be negative")
	}
	if s.MaxPresses < 0 {
		return fmt.Errorf("max_presses must not be negative")
	}
	if s.MaxPulses < 0 {
		return fmt.Errorf("max_pulses must not be negative")
	}
	if s.Expect.Error != "" && !knownErrorCode(s.Expect.Error) {
		return fmt.Errorf("unknown error code %q", s.Expect.Error)
	}
	if s.Presses == 0 && s.Target == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("nothing to check: set presses, target or assertions")
	}

	e := s.Expect
	if s.Presses == 0 && (e.Product != nil || e.Low != nil || e.High != nil ||
		e.LoopStart != nil || e.LoopLength != nil || len(e.Triggers) > 0) {
		return fmt.Errorf("aggregate expectations require presses")
	}
	if s.Target == "" && (e.Answer != nil || len(e.Periods) > 0 || s.Verify) {
		return fmt.Errorf("convergence expectations require target")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Press < 0 {
		return fmt.Errorf("assertions[%d]: press must not be negative", index)
	}

	switch a.Type {
	case AssertTraceContains, AssertTraceCount:
		if a.Pulse == "" {
			return fmt.Errorf("assertions[%d]: pulse is required for %s", index, a.Type)
		}
		if _, err := ParsePulse(a.Pulse); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertTraceOrder:
		if len(a.Pulses) == 0 {
			return fmt.Errorf("assertions[%d]: pulses list is required for trace_order", index)
		}
		for _, p := range a.Pulses {
			if _, err := ParsePulse(p); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertFinalState:
		if a.Module == "" {
			return fmt.Errorf("assertions[%d]: module is required for final_state", index)
		}
		if a.On == nil && len(a.Memory) == 0 {
			return fmt.Errorf("assertions[%d]: on or memory is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}

	return nil
}
