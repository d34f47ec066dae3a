package ir

import "fmt"

// Signal is the two-valued payload of a pulse.
type Signal uint8

const (
	// Low is the default signal; every conjunction memory starts Low.
	Low Signal = iota
	// High is the active signal.
	High
)

// String returns "low" or "high".
func (s Signal) String() string {
	switch s {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return fmt.Sprintf("Signal(%d)", uint8(s))
	}
}

// Invert returns the opposite signal.
func (s Signal) Invert() Signal {
	if s == High {
		return Low
	}
	return High
}

// MarshalText implements encoding.TextMarshaler.
func (s Signal) MarshalText() ([]byte, error) {
	switch s {
	case Low, High:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("invalid signal %d", uint8(s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Signal) UnmarshalText(text []byte) error {
	switch string(text) {
	case "low":
		*s = Low
	case "high":
		*s = High
	default:
		return fmt.Errorf("invalid signal %q: must be low or high", text)
	}
	return nil
}

// Pulse is a single unit-delay event travelling along one wiring edge.
// A pulse is created by a reacting module and consumed exactly once when
// the queue delivers it.
type Pulse struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Signal      Signal `json:"signal"`
}

// String renders the pulse as "source -signal-> destination".
func (p Pulse) String() string {
	return fmt.Sprintf("%s -%s-> %s", p.Source, p.Signal, p.Destination)
}

// Edge identifies a directed wiring edge independent of the signal it carries.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// String renders the edge as "from -> to".
func (e Edge) String() string {
	return e.From + " -> " + e.To
}
