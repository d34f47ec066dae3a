package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/metrics"
	"github.com/roach88/pulsenet/internal/store"
	"github.com/roach88/pulsenet/internal/wiring"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	EngineFlags
	Presses     int64
	Journal     string
	MetricsFile string

	// IDGenerator allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// SimulateResult is the outcome of the aggregate question.
type SimulateResult struct {
	WiringHash string `json:"wiring_hash"`
	Presses    int64  `json:"presses"`
	Simulated  int64  `json:"simulated"`
	Low        int64  `json:"low"`
	High       int64  `json:"high"`
	Product    int64  `json:"product"`
	Looped     bool   `json:"looped"`
	LoopStart  int64  `json:"loop_start"`
	LoopLength int64  `json:"loop_length"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <wiring>",
		Short: "Count low and high pulses over N presses",
		Long: `Press the button N times and report total low pulses, total high
pulses and their product.

Presses are simulated until the network state repeats; the remaining
presses are extrapolated from the loop, so N can be far larger than the
number of presses actually simulated.

The wiring is a text file ("%a -> b, c" lines) or a .cue file.

Examples:
  pulsenet simulate input.txt
  pulsenet simulate input.txt --presses 4000000
  pulsenet simulate wiring.cue --journal runs.db --metrics-file pulsenet.prom`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64VarP(&opts.Presses, "presses", "n", 1000, "number of button presses")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	opts.EngineFlags.register(cmd)

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	f := opts.formatter(cmd)
	logger := opts.logger(cmd)

	list, g, err := loadGraph(f, path)
	if err != nil {
		return err
	}
	hash, err := ir.WiringHash(list)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash wiring", err)
	}

	e := engine.New(g, opts.options(logger)...)

	var digests *digestRecorder
	if opts.Journal != "" {
		digests = &digestRecorder{graph: g}
		e.Observe(digests)
	}

	var reg *prometheus.Registry
	if opts.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		collector, err := metrics.NewCollector(reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create metrics", err)
		}
		e.Observe(collector)
	}

	logger.Info("simulating", "wiring", path, "modules", g.Len(), "presses", opts.Presses)
	totals, err := engine.Aggregate(ctx, e, opts.Presses)
	if err != nil {
		return simulationError(f, err)
	}
	logger.Info("simulation complete",
		"simulated", totals.Simulated,
		"low", totals.Low,
		"high", totals.High)

	if reg != nil {
		if err := metrics.WriteFile(opts.MetricsFile, reg); err != nil {
			_ = f.Error(ErrCodeMetrics, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
		f.VerboseLog("Wrote metrics to %s", opts.MetricsFile)
	}

	result := SimulateResult{
		WiringHash: hash,
		Presses:    totals.Presses,
		Simulated:  totals.Simulated,
		Low:        totals.Low,
		High:       totals.High,
		Product:    totals.Product(),
		Looped:     totals.Looped,
		LoopStart:  totals.LoopStart,
		LoopLength: totals.LoopLength,
	}

	var runID string
	if opts.Journal != "" {
		runID, err = journalAggregate(ctx, opts, list, hash, totals, digests.records)
		if err != nil {
			_ = f.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to journal run", err)
		}
		logger.Info("run journaled", "run_id", runID, "db", opts.Journal)
	}

	return outputSimulate(f, result, runID)
}

// digestRecorder journals the counts and state digest of every press.
type digestRecorder struct {
	graph   *engine.Graph
	records []store.TriggerRecord
}

func (d *digestRecorder) ObservePulse(int64, ir.Pulse) {}

func (d *digestRecorder) ObserveTrigger(r engine.TriggerResult) {
	d.records = append(d.records, store.TriggerRecord{
		Press:       r.Press,
		Low:         r.Low,
		High:        r.High,
		StateDigest: d.graph.Snapshot().Digest(),
	})
}

func journalAggregate(ctx context.Context, opts *SimulateOptions, list ir.ModuleList, hash string,
	totals engine.Totals, records []store.TriggerRecord) (string, error) {
	st, err := store.Open(opts.Journal)
	if err != nil {
		return "", err
	}
	defer st.Close()

	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}

	run := store.Run{
		ID:            gen.Generate(),
		Mode:          store.ModeAggregate,
		WiringHash:    hash,
		Wiring:        wiring.Format(list),
		Options:       opts.journalOptions(0),
		Presses:       totals.Presses,
		Answer:        totals.Product(),
		Low:           totals.Low,
		High:          totals.High,
		Looped:        totals.Looped,
		LoopStart:     totals.LoopStart,
		LoopLength:    totals.LoopLength,
		EngineVersion: ir.EngineVersion,
		StateVersion:  ir.StateVersion,
	}
	if err := st.WriteRun(ctx, run); err != nil {
		return "", err
	}
	if err := st.WriteTriggers(ctx, run.ID, records); err != nil {
		return "", err
	}
	return run.ID, nil
}

func outputSimulate(f *OutputFormatter, r SimulateResult, runID string) error {
	return f.Emit(r, runID, func(w io.Writer) {
		fmt.Fprintf(w, "Presses:  %s", Number(r.Presses))
		if r.Looped {
			fmt.Fprintf(w, " (simulated %s, loop of %s from press %s)",
				Number(r.Simulated), Number(r.LoopLength), Number(r.LoopStart))
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Low:      %s\n", Number(r.Low))
		fmt.Fprintf(w, "High:     %s\n", Number(r.High))
		fmt.Fprintf(w, "Product:  %s\n", Number(r.Product))
		if runID != "" {
			fmt.Fprintf(w, "Run:      %s\n", runID)
		}
	})
}
