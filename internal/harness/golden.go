package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
)

// TraceSnapshot captures the pulse trace of a short run.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	Name    string               `json:"name"`
	Presses int64                `json:"presses"`
	Trace   []engine.TracedPulse `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization. ir.MarshalCanonical only handles primitives, slices
// and maps.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, tp := range s.Trace {
		traceList[i] = map[string]any{
			"press": tp.Press,
			"seq":   tp.Seq,
			"pulse": tp.Pulse.String(),
		}
	}
	return map[string]any{
		"name":    s.Name,
		"presses": s.Presses,
		"trace":   traceList,
	}
}

// MarshalTrace renders a trace snapshot as canonical JSON.
func MarshalTrace(name string, presses int64, trace []engine.TracedPulse) ([]byte, error) {
	snapshot := TraceSnapshot{Name: name, Presses: presses, Trace: trace}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// AssertGoldenTrace runs list for presses triggers and compares the trace
// against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the simulation fails. Test failure (via goldie) occurs
// if the trace doesn't match the golden file.
func AssertGoldenTrace(t *testing.T, name string, list ir.ModuleList, presses int64) error {
	t.Helper()

	trace, err := Trace(list, presses)
	if err != nil {
		return err
	}

	traceJSON, err := MarshalTrace(name, presses, trace)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)

	return nil
}
