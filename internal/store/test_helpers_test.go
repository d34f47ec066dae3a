package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/pulsenet/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates an aggregate run with minimal required fields.
func createTestRun(id string) Run {
	return Run{
		ID:         id,
		Mode:       ModeAggregate,
		WiringHash: "test-hash",
		Wiring:     "broadcaster -> a\n%a -> b\n",
		Options: Options{
			Broadcaster: "broadcaster",
			SeedSource:  "button",
			MaxPulses:   1000000,
			MaxPresses:  1000000,
		},
		Presses:       1000,
		Answer:        2062500000000,
		Low:           2750000,
		High:          750000,
		Looped:        true,
		LoopStart:     0,
		LoopLength:    4,
		EngineVersion: ir.EngineVersion,
		StateVersion:  ir.StateVersion,
	}
}
