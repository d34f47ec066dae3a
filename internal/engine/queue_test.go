package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/ir"
)

func TestPulseQueue_PushPop(t *testing.T) {
	q := newPulseQueue()

	q.Push(ir.Pulse{Source: "button", Destination: "broadcaster", Signal: ir.Low})

	got, ok := q.Pop()
	require.True(t, ok, "pop should succeed")
	assert.Equal(t, "broadcaster", got.Destination)
	assert.Equal(t, 0, q.Len())
}

func TestPulseQueue_FIFO(t *testing.T) {
	q := newPulseQueue()

	q.Push(ir.Pulse{Source: "s", Destination: "A"})
	q.PushAll([]ir.Pulse{{Source: "s", Destination: "B"}, {Source: "s", Destination: "C"}})

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got.Destination)
	}
}

func TestPulseQueue_InterleavedPushPop(t *testing.T) {
	// Pulses pushed while draining go behind everything already queued.
	q := newPulseQueue()
	q.PushAll([]ir.Pulse{{Destination: "1"}, {Destination: "2"}})

	first, _ := q.Pop()
	assert.Equal(t, "1", first.Destination)
	q.Push(ir.Pulse{Destination: "3"})

	var order []string
	for {
		p, ok := q.Pop()
		if !ok {
			break
		}
		order = append(order, p.Destination)
	}
	assert.Equal(t, []string{"2", "3"}, order)
}

func TestPulseQueue_PopEmpty(t *testing.T) {
	q := newPulseQueue()

	_, ok := q.Pop()
	assert.False(t, ok, "pop from empty queue should return false")
}

func TestPulseQueue_Clear(t *testing.T) {
	q := newPulseQueue()
	q.PushAll([]ir.Pulse{{Destination: "a"}, {Destination: "b"}})

	q.Clear()
	assert.Equal(t, 0, q.Len())
	_, ok := q.Pop()
	assert.False(t, ok)
}
