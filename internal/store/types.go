package store

import "github.com/roach88/pulsenet/internal/ir"

// Mode identifies which question a run answered.
type Mode string

const (
	// ModeAggregate is low*high pulse totals over N presses.
	ModeAggregate Mode = "aggregate"
	// ModeConverge is the first press on which the target receives low.
	ModeConverge Mode = "converge"
)

// Options are the engine settings a run used. Replays must use the same.
type Options struct {
	Broadcaster string `json:"broadcaster"`
	SeedSource  string `json:"seed_source"`
	MaxPulses   int64  `json:"max_pulses"`
	MaxPresses  int64  `json:"max_presses"`
}

// Run is one journaled simulator run.
type Run struct {
	ID         string
	Mode       Mode
	WiringHash string
	Wiring     string // line format, as produced by wiring.Format
	Options    Options
	Presses    int64
	Target     string // converge runs only
	Answer     int64

	// Aggregate runs only.
	Low        int64
	High       int64
	Looped     bool
	LoopStart  int64
	LoopLength int64

	EngineVersion string
	StateVersion  string
}

// TriggerRecord is one simulated press of an aggregate run.
type TriggerRecord struct {
	Press       int64
	Low         int64
	High        int64
	StateDigest string
}

// PeriodRecord is the period found for one watched edge of a converge run.
type PeriodRecord struct {
	Edge   ir.Edge
	Period int64
}
