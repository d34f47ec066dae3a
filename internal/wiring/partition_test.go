package wiring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoCounters = `broadcaster -> a0, b0
%a0 -> a1, ac
%a1 -> ac
&ac -> a0, ai
&ai -> hub
%b0 -> b1, bc
%b1 -> b2
%b2 -> bc
&bc -> b0, b1, bi
&bi -> hub
&hub -> rx
`

func TestPartition_DisjointCounters(t *testing.T) {
	list, err := ParseString(twoCounters)
	require.NoError(t, err)

	subs := Partition(list, "broadcaster", "hub")
	require.Len(t, subs, 2)

	assert.Equal(t, "a0", subs[0].Root)
	assert.Equal(t, []string{"a0", "a1", "ac", "ai"}, subs[0].Members)
	assert.Equal(t, []string{"ai"}, subs[0].Exits)

	assert.Equal(t, "b0", subs[1].Root)
	assert.Equal(t, []string{"b0", "b1", "b2", "bc", "bi"}, subs[1].Members)
	assert.Equal(t, []string{"bi"}, subs[1].Exits)

	assert.Empty(t, Overlaps(subs))
}

func TestPartition_Overlapping(t *testing.T) {
	list, err := ParseString("broadcaster -> a, b\n%a -> shared\n%b -> shared\n&shared -> hub\n&hub -> rx\n")
	require.NoError(t, err)

	subs := Partition(list, "broadcaster", "hub")
	shared := Overlaps(subs)
	assert.Equal(t, map[string][]string{"shared": {"a", "b"}}, shared)
}

func TestPartition_NoBoundaryFollowsEverything(t *testing.T) {
	list, err := ParseString(twoCounters)
	require.NoError(t, err)

	subs := Partition(list, "broadcaster", "")
	require.Len(t, subs, 2)
	assert.Contains(t, subs[0].Members, "hub")
	assert.Contains(t, subs[0].Members, "rx")
	assert.Empty(t, subs[0].Exits)
}

func TestPartition_MissingBroadcaster(t *testing.T) {
	list, err := ParseString("%a -> b\n")
	require.NoError(t, err)
	assert.Nil(t, Partition(list, "broadcaster", "hub"))
}
