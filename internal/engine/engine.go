package engine

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/pulsenet/internal/ir"
)

// DefaultMaxPulsesPerTrigger is the default pulse quota for one trigger.
// Every realistic network settles far below it; exceeding it means the
// wiring never reaches quiescence.
const DefaultMaxPulsesPerTrigger = 1_000_000

// DefaultSeedSource is the source name of the low pulse that starts every
// trigger.
const DefaultSeedSource = "button"

// Counts tallies delivered pulses by signal.
type Counts struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}

// Total returns Low + High.
func (c Counts) Total() int64 { return c.Low + c.High }

// add counts one pulse.
func (c *Counts) add(s ir.Signal) {
	if s == ir.High {
		c.High++
	} else {
		c.Low++
	}
}

// TriggerResult describes one completed trigger. Counts include the seed
// pulse and every pulse delivered to sinks.
type TriggerResult struct {
	Press int64 `json:"press"`
	Counts
}

// Observer receives every delivered pulse and every completed trigger.
// Observers run synchronously inside RunTrigger and must not mutate the
// graph.
type Observer interface {
	ObservePulse(press int64, p ir.Pulse)
	ObserveTrigger(r TriggerResult)
}

// PulseFunc adapts a function to an Observer that ignores trigger
// completion.
type PulseFunc func(press int64, p ir.Pulse)

// ObservePulse calls f.
func (f PulseFunc) ObservePulse(press int64, p ir.Pulse) { f(press, p) }

// ObserveTrigger does nothing.
func (f PulseFunc) ObserveTrigger(TriggerResult) {}

// Engine runs triggers against a graph.
//
// INVARIANTS:
//   - Each trigger starts with an empty queue and ends with an empty queue
//     (or returns an error).
//   - Pulses are delivered strictly in enqueue order.
//   - Counts include every delivered pulse, sinks included.
//
// Engine is not safe for concurrent use.
type Engine struct {
	graph     *Graph
	queue     *pulseQueue
	meter     meter
	quota     *QuotaEnforcer
	observers []registration
	nextObsID int
	logger    *slog.Logger

	broadcaster string
	seedSource  string
	maxPulses   int64

	buf []ir.Pulse // reaction scratch space
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithLogger sets the logger used for per-trigger and per-pulse debug
// output. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxPulsesPerTrigger sets the pulse quota per trigger.
//
// Default: 1,000,000 (DefaultMaxPulsesPerTrigger).
// Zero or a negative value disables the quota.
func WithMaxPulsesPerTrigger(n int64) Option {
	return func(e *Engine) {
		e.maxPulses = n
	}
}

// WithObserver registers an observer for the lifetime of the engine.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.register(o)
	}
}

// WithBroadcaster changes the module that receives the seed pulse.
// Default: ir.BroadcasterName.
func WithBroadcaster(name string) Option {
	return func(e *Engine) {
		e.broadcaster = name
	}
}

// WithSeedSource changes the source name on the seed pulse.
// Default: DefaultSeedSource.
func WithSeedSource(name string) Option {
	return func(e *Engine) {
		e.seedSource = name
	}
}

// New creates an Engine driving g. The graph is used as is; call Reset
// first if it has been run before.
func New(g *Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:       g,
		queue:       newPulseQueue(),
		logger:      slog.Default(),
		broadcaster: ir.BroadcasterName,
		seedSource:  DefaultSeedSource,
		maxPulses:   DefaultMaxPulsesPerTrigger,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.quota = NewQuotaEnforcer(e.maxPulses)
	return e
}

// Graph returns the graph the engine drives.
func (e *Engine) Graph() *Graph { return e.graph }

// Broadcaster returns the name of the module that receives the seed pulse.
func (e *Engine) Broadcaster() string { return e.broadcaster }

// Presses returns the number of triggers run since creation or Reset.
func (e *Engine) Presses() int64 { return e.meter.presses }

// Delivered returns the pulses delivered since creation or Reset,
// including those of a trigger cut short by the quota.
func (e *Engine) Delivered() Counts { return e.meter.delivered }

// Reset returns the graph to rest and rewinds the press counter.
func (e *Engine) Reset() {
	e.graph.Reset()
	e.queue.Clear()
	e.meter.reset()
}

// registration pairs an observer with an id so it can be removed even when
// its dynamic type is not comparable (PulseFunc).
type registration struct {
	id int
	Observer
}

func (e *Engine) register(o Observer) int {
	e.nextObsID++
	e.observers = append(e.observers, registration{id: e.nextObsID, Observer: o})
	return e.nextObsID
}

// Observe registers an observer and returns a function that removes it.
func (e *Engine) Observe(o Observer) (remove func()) {
	id := e.register(o)
	return func() {
		e.observers = slices.DeleteFunc(e.observers, func(r registration) bool {
			return r.id == id
		})
	}
}

// RunTrigger performs one button press: a low pulse from the seed source
// to the broadcaster, then delivers pulses in FIFO order until the queue
// is empty.
//
// If the broadcaster is not declared the seed pulse is counted and
// dropped like any pulse to a sink.
//
// Returns PulseQuotaError if the trigger does not settle within the quota.
// The partial counts are returned alongside the error.
func (e *Engine) RunTrigger() (TriggerResult, error) {
	press := e.meter.begin()
	result := TriggerResult{Press: press}
	debug := e.logger.Enabled(context.Background(), slog.LevelDebug)

	e.quota.Reset()
	e.queue.Clear()
	e.queue.Push(ir.Pulse{Source: e.seedSource, Destination: e.broadcaster, Signal: ir.Low})

	for {
		p, ok := e.queue.Pop()
		if !ok {
			break
		}
		if err := e.quota.Check(press); err != nil {
			e.queue.Clear()
			e.meter.settle(result.Counts)
			e.logger.Warn("pulse quota exceeded",
				"press", press,
				"limit", e.quota.MaxPulses())
			return result, err
		}

		result.add(p.Signal)
		if debug {
			e.logger.Debug("pulse", "press", press, "pulse", p.String())
		}
		for _, o := range e.observers {
			o.ObservePulse(press, p)
		}

		m, ok := e.graph.modules[p.Destination]
		if !ok {
			continue
		}
		e.buf = m.appendReaction(e.buf[:0], p.Source, p.Signal)
		e.queue.PushAll(e.buf)
	}

	if debug {
		e.logger.Debug("trigger complete",
			"press", press,
			"low", result.Low,
			"high", result.High)
	}
	e.meter.settle(result.Counts)
	for _, o := range e.observers {
		o.ObserveTrigger(result)
	}
	return result, nil
}
