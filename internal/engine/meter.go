package engine

// meter numbers presses and keeps lifetime pulse totals. Press n is the
// n-th trigger since the meter was created or reset; the first is 1.
type meter struct {
	presses   int64
	delivered Counts
}

// begin starts a new press and returns its number.
func (m *meter) begin() int64 {
	m.presses++
	return m.presses
}

// settle folds one press's counts, complete or partial, into the totals.
func (m *meter) settle(c Counts) {
	m.delivered.Low += c.Low
	m.delivered.High += c.High
}

func (m *meter) reset() { *m = meter{} }
