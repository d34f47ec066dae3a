package wiring

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/ir"
)

const sampleInverterCUE = `
modules: {
	broadcaster: {kind: "broadcast", outputs: ["a", "b", "c"]}
	a: {kind: "flipflop", outputs: ["b"]}
	b: {kind: "flipflop", outputs: ["c"]}
	c: {kind: "flipflop", outputs: ["inv"]}
	inv: {kind: "conjunction", outputs: ["a"]}
}
`

func sortedByName(list ir.ModuleList) ir.ModuleList {
	out := slices.Clone(list)
	slices.SortFunc(out, func(a, b ir.ModuleSpec) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func TestCompileCUE(t *testing.T) {
	list, err := CompileCUE(sampleInverterCUE, "inverter.cue")
	require.NoError(t, err)
	require.Len(t, list, 5)

	names := make([]string, len(list))
	for i, m := range list {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"a", "b", "broadcaster", "c", "inv"}, names, "modules are sorted by name")

	bc, ok := list.Lookup("broadcaster")
	require.True(t, ok)
	assert.Equal(t, ir.KindBroadcast, bc.Kind)
	assert.Equal(t, []string{"a", "b", "c"}, bc.Outputs, "outputs keep declared order")
}

func TestCompileCUE_DefaultOutputs(t *testing.T) {
	list, err := CompileCUE(`modules: sink: {kind: "flipflop"}`, "x.cue")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{}, list[0].Outputs)
}

func TestCompileCUE_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{"syntax", `modules: {`, ""},
		{"bad kind", `modules: a: {kind: "nand"}`, ""},
		{"extra field", `modules: a: {kind: "flipflop", delay: 3}`, ""},
		{"missing modules", `other: 1`, "modules is required"},
		{"misnamed broadcast", `modules: relay: {kind: "broadcast"}`, "must be named"},
		{"non-string output", `modules: a: {kind: "flipflop", outputs: [1]}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileCUE(tt.src, "bad.cue")
			require.Error(t, err)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestCompileCUE_ErrorHasPosition(t *testing.T) {
	_, err := CompileCUE("modules: {\n\ta: {kind: \"nand\"}\n}\n", "pos.cue")
	require.Error(t, err)

	var ce *CompileError
	if assert.ErrorAs(t, err, &ce) {
		assert.True(t, ce.Pos.IsValid())
	}
}
