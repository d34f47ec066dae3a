package engine

import "github.com/roach88/pulsenet/internal/ir"

// pulseQueue is the single FIFO every pulse of a trigger passes through.
//
// The queue is unbounded so a reaction can enqueue any number of pulses
// without blocking; the engine bounds a trigger with its pulse quota
// instead. It is not safe for concurrent use: the engine is the only
// producer and consumer.
type pulseQueue struct {
	pulses []ir.Pulse
}

// newPulseQueue creates an empty queue.
func newPulseQueue() *pulseQueue {
	return &pulseQueue{
		pulses: make([]ir.Pulse, 0, 64),
	}
}

// Push adds a pulse to the back of the queue.
func (q *pulseQueue) Push(p ir.Pulse) {
	q.pulses = append(q.pulses, p)
}

// PushAll adds pulses to the back of the queue in order.
func (q *pulseQueue) PushAll(ps []ir.Pulse) {
	q.pulses = append(q.pulses, ps...)
}

// Pop removes and returns the front pulse.
// Returns (ir.Pulse{}, false) if the queue is empty.
func (q *pulseQueue) Pop() (ir.Pulse, bool) {
	if len(q.pulses) == 0 {
		return ir.Pulse{}, false
	}

	p := q.pulses[0]

	// Clear the slot so the backing array does not pin the name strings.
	q.pulses[0] = ir.Pulse{}

	if len(q.pulses) == 1 {
		q.pulses = q.pulses[:0]
	} else {
		q.pulses = q.pulses[1:]
	}
	return p, true
}

// Len returns the number of pending pulses.
func (q *pulseQueue) Len() int {
	return len(q.pulses)
}

// Clear drops every pending pulse.
func (q *pulseQueue) Clear() {
	clear(q.pulses)
	q.pulses = q.pulses[:0]
}
