package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleKindRoundTrip(t *testing.T) {
	for _, k := range []ModuleKind{KindBroadcast, KindFlipFlop, KindConjunction} {
		parsed, err := ParseModuleKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseModuleKind("nand")
	assert.Error(t, err)
}

func TestModuleKindPrefix(t *testing.T) {
	assert.Equal(t, "", KindBroadcast.Prefix())
	assert.Equal(t, "%", KindFlipFlop.Prefix())
	assert.Equal(t, "&", KindConjunction.Prefix())

	assert.False(t, KindBroadcast.Stateful())
	assert.True(t, KindFlipFlop.Stateful())
	assert.True(t, KindConjunction.Stateful())
}

func TestModuleListPredecessors(t *testing.T) {
	list := ModuleList{
		{Name: "broadcaster", Kind: KindBroadcast, Outputs: []string{"a", "b"}},
		{Name: "a", Kind: KindFlipFlop, Outputs: []string{"con", "con"}},
		{Name: "b", Kind: KindFlipFlop, Outputs: []string{"con"}},
		{Name: "con", Kind: KindConjunction, Outputs: []string{"output"}},
	}

	preds := list.Predecessors()
	assert.Equal(t, []string{"a", "b"}, preds["con"], "duplicate edges count once")
	assert.Equal(t, []string{"con"}, preds["output"], "sinks have predecessors too")
	assert.Empty(t, preds["broadcaster"])
}

func TestModuleListLookup(t *testing.T) {
	list := ModuleList{{Name: "a", Kind: KindFlipFlop}}

	m, ok := list.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, KindFlipFlop, m.Kind)

	_, ok = list.Lookup("missing")
	assert.False(t, ok)
}
