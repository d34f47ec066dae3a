package engine

import "github.com/roach88/pulsenet/internal/ir"

// TracedPulse is one delivered pulse with its position in the run.
type TracedPulse struct {
	Press int64 `json:"press"`
	Seq   int   `json:"seq"` // 1-based delivery order within the press
	ir.Pulse
}

// Recorder is an Observer that keeps every delivered pulse in order.
// Memory grows with the number of pulses; use it for short runs.
type Recorder struct {
	Pulses   []TracedPulse
	Triggers []TriggerResult

	seq  int
	last int64
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ObservePulse implements Observer.
func (r *Recorder) ObservePulse(press int64, p ir.Pulse) {
	if press != r.last {
		r.last = press
		r.seq = 0
	}
	r.seq++
	r.Pulses = append(r.Pulses, TracedPulse{Press: press, Seq: r.seq, Pulse: p})
}

// ObserveTrigger implements Observer.
func (r *Recorder) ObserveTrigger(res TriggerResult) {
	r.Triggers = append(r.Triggers, res)
}

// Press returns the pulses delivered during the given press.
func (r *Recorder) Press(press int64) []TracedPulse {
	var out []TracedPulse
	for _, tp := range r.Pulses {
		if tp.Press == press {
			out = append(out, tp)
		}
	}
	return out
}
