package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/pulsenet/internal/ir"
)

// marshalOptions converts Options to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so identical options are byte-identical.
func marshalOptions(o Options) (string, error) {
	data, err := ir.MarshalCanonical(map[string]any{
		"broadcaster": o.Broadcaster,
		"seed_source": o.SeedSource,
		"max_pulses":  o.MaxPulses,
		"max_presses": o.MaxPresses,
	})
	if err != nil {
		return "", fmt.Errorf("marshal options: %w", err)
	}
	return string(data), nil
}

// unmarshalOptions parses an options column. Unknown fields are rejected so
// a journal written by a newer version is not silently misread.
func unmarshalOptions(s string) (Options, error) {
	var o Options
	dec := json.NewDecoder(strings.NewReader(s))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&o); err != nil {
		return Options{}, fmt.Errorf("unmarshal options: %w", err)
	}
	return o, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
