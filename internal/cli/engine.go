package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/store"
	"github.com/roach88/pulsenet/internal/wiring"
)

// Error codes for failures outside the engine's RuntimeError codes.
const (
	ErrCodeWiring   = "E_WIRING"   // wiring file missing or malformed
	ErrCodeJournal  = "E_JOURNAL"  // journal database error
	ErrCodeMetrics  = "E_METRICS"  // metrics file could not be written
	ErrCodeMismatch = "E_MISMATCH" // verify or replay disagreement
	ErrCodeGeneric  = "E_FAILED"   // anything else
)

// EngineFlags are the engine settings shared by the simulation commands.
type EngineFlags struct {
	Broadcaster string
	SeedSource  string
	MaxPulses   int64
}

func (f *EngineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Broadcaster, "broadcaster", ir.BroadcasterName, "module that receives the seed pulse")
	cmd.Flags().StringVar(&f.SeedSource, "seed-source", engine.DefaultSeedSource, "source name of the seed pulse")
	cmd.Flags().Int64Var(&f.MaxPulses, "max-pulses", engine.DefaultMaxPulsesPerTrigger, "pulse quota per press")
}

// options converts the flags to engine options.
func (f EngineFlags) options(logger *slog.Logger) []engine.Option {
	return []engine.Option{
		engine.WithLogger(logger),
		engine.WithBroadcaster(f.Broadcaster),
		engine.WithSeedSource(f.SeedSource),
		engine.WithMaxPulsesPerTrigger(f.MaxPulses),
	}
}

// journalOptions records the flags in a journal run.
func (f EngineFlags) journalOptions(maxPresses int64) store.Options {
	return store.Options{
		Broadcaster: f.Broadcaster,
		SeedSource:  f.SeedSource,
		MaxPulses:   f.MaxPulses,
		MaxPresses:  maxPresses,
	}
}

// flagsFromJournal restores the engine flags a journaled run used.
func flagsFromJournal(o store.Options) EngineFlags {
	return EngineFlags{
		Broadcaster: o.Broadcaster,
		SeedSource:  o.SeedSource,
		MaxPulses:   o.MaxPulses,
	}
}

// loadGraph loads a wiring file and builds its graph.
func loadGraph(f *OutputFormatter, path string) (ir.ModuleList, *engine.Graph, error) {
	list, err := wiring.LoadFile(path)
	if err != nil {
		_ = f.Error(ErrCodeWiring, err.Error(), nil)
		return nil, nil, WrapExitError(ExitCommandError, "failed to load wiring", err)
	}
	g, err := engine.NewGraph(list)
	if err != nil {
		_ = f.Error(ErrCodeWiring, err.Error(), nil)
		return nil, nil, WrapExitError(ExitCommandError, "invalid wiring", err)
	}
	f.VerboseLog("Loaded %d modules from %s", g.Len(), path)
	return list, g, nil
}

// simulationError reports an engine error and maps it to an exit code:
// bad arguments and unknown modules are command errors, everything else
// (quota, assumption, overflow) is a failed check.
func simulationError(f *OutputFormatter, err error) error {
	code, details := runtimeErrorCode(err)
	_ = f.Error(code, err.Error(), details)

	switch engine.RuntimeErrorCode(code) {
	case engine.ErrCodeInvalidArgument, engine.ErrCodeUnknownModule:
		return WrapExitError(ExitCommandError, "simulation failed", err)
	}
	return WrapExitError(ExitFailure, "simulation failed", err)
}

func runtimeErrorCode(err error) (string, interface{}) {
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		if re.Module != "" {
			return string(re.Code), map[string]string{"module": re.Module}
		}
		return string(re.Code), nil
	}
	var ae *engine.AssumptionError
	if errors.As(err, &ae) {
		edges := make([]string, len(ae.Edges))
		for i, e := range ae.Edges {
			edges[i] = e.String()
		}
		return string(engine.ErrCodeAssumptionViolated), map[string]interface{}{
			"edges":       edges,
			"max_presses": ae.MaxPresses,
		}
	}
	var pe *engine.PulseQuotaError
	if errors.As(err, &pe) {
		return string(engine.ErrCodeQuotaExceeded), map[string]int64{
			"press":  pe.Press,
			"pulses": pe.Pulses,
			"limit":  pe.Limit,
		}
	}
	return ErrCodeGeneric, nil
}
