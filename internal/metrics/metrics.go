// Package metrics exports simulator counters in the Prometheus text format.
//
// The simulator is a one-shot process, so nothing is served over HTTP; a
// Collector is registered on a private registry, attached to an engine as an
// observer, and written to a textfile (node_exporter textfile collector
// format) when the run ends.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
)

// Collector counts pulses and triggers. It implements engine.Observer.
type Collector struct {
	pulses        *prometheus.CounterVec
	triggers      prometheus.Counter
	triggerPulses prometheus.Histogram

	// Resolved once; ObservePulse runs for every delivered pulse.
	low  prometheus.Counter
	high prometheus.Counter
}

var _ engine.Observer = (*Collector)(nil)

// NewCollector creates the pulsenet metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		pulses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsenet_pulses_total",
				Help: "Total number of delivered pulses by signal",
			},
			[]string{"signal"},
		),
		triggers: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pulsenet_triggers_total",
				Help: "Total number of completed triggers",
			},
		),
		triggerPulses: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pulsenet_trigger_pulses",
				Help:    "Pulses delivered per trigger",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
	}
	c.low = c.pulses.WithLabelValues(ir.Low.String())
	c.high = c.pulses.WithLabelValues(ir.High.String())

	for _, col := range []prometheus.Collector{c.pulses, c.triggers, c.triggerPulses} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// ObservePulse implements engine.Observer.
func (c *Collector) ObservePulse(_ int64, p ir.Pulse) {
	if p.Signal == ir.High {
		c.high.Inc()
	} else {
		c.low.Inc()
	}
}

// ObserveTrigger implements engine.Observer.
func (c *Collector) ObserveTrigger(r engine.TriggerResult) {
	c.triggers.Inc()
	c.triggerPulses.Observe(float64(r.Total()))
}

// WriteFile writes everything g gathers to path in the text exposition
// format. The file is replaced atomically.
func WriteFile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
