package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/store"
	"github.com/roach88/pulsenet/internal/wiring"
)

// ConvergeOptions holds flags for the converge command.
type ConvergeOptions struct {
	*RootOptions
	EngineFlags
	Target     string
	MaxPresses int64
	Verify     bool
	Journal    string

	// IDGenerator allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// ConvergeResult is the outcome of the convergence question.
type ConvergeResult struct {
	WiringHash  string         `json:"wiring_hash"`
	Target      string         `json:"target"`
	Convergence string         `json:"convergence"`
	Periods     []PeriodResult `json:"periods"`
	Answer      int64          `json:"answer"`
	Verified    bool           `json:"verified"`
}

// PeriodResult is the period of one edge into the convergence node.
type PeriodResult struct {
	Edge   string `json:"edge"`
	Period int64  `json:"period"`
}

// NewConvergeCommand creates the converge command.
func NewConvergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "converge <wiring>",
		Short: "Find the first press on which the target receives a low pulse",
		Long: `Find the first press on which the target module receives a low pulse.

The target must be fed (possibly through single-input conjunctions) by one
conjunction whose inputs are independent counters. Each input's period is
found separately from rest and the answer is their least common multiple.

This only holds for networks of that shape. --verify also runs the literal
simulation and fails if the two answers disagree; it costs one press per
press of the answer.

Exit codes:
  0 - Answer found (and verified, with --verify)
  1 - Structure assumption violated, or brute force disagrees
  2 - Command error (bad wiring, unknown target, etc.)

Examples:
  pulsenet converge input.txt
  pulsenet converge input.txt --target rx --max-presses 100000
  pulsenet converge input.txt --verify --journal runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConverge(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "rx", "module whose first low pulse is wanted")
	cmd.Flags().Int64Var(&opts.MaxPresses, "max-presses", engine.DefaultMaxPresses, "search ceiling per edge")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "cross-check the answer by brute force")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the run in this SQLite database")
	opts.EngineFlags.register(cmd)

	return cmd
}

func runConverge(opts *ConvergeOptions, path string, cmd *cobra.Command) error {
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
	finder, err := engine.NewPeriodFinder(e, opts.Target, engine.WithMaxPresses(opts.MaxPresses))
	if err != nil {
		return simulationError(f, err)
	}
	logger.Info("searching periods",
		"target", finder.Target(),
		"convergence", finder.Convergence(),
		"edges", len(finder.Watched()))

	periods, err := finder.Periods(ctx)
	if err != nil {
		return simulationError(f, err)
	}
	values := make([]int64, len(periods))
	for i, p := range periods {
		values[i] = p.Period
	}
	answer, err := engine.LCM(values...)
	if err != nil {
		return simulationError(f, err)
	}

	result := ConvergeResult{
		WiringHash:  hash,
		Target:      finder.Target(),
		Convergence: finder.Convergence(),
		Periods:     make([]PeriodResult, len(periods)),
		Answer:      answer,
	}
	for i, p := range periods {
		result.Periods[i] = PeriodResult{Edge: p.Edge.String(), Period: p.Period}
	}

	if opts.Verify {
		limit := opts.MaxPresses
		if answer > limit {
			limit = answer
		}
		logger.Info("verifying by brute force", "presses", answer)
		brute, err := engine.BruteForce(ctx, e, finder.Convergence(), limit)
		if err != nil {
			return simulationError(f, err)
		}
		if brute != answer {
			msg := fmt.Sprintf("brute force found press %d, LCM of periods gave %d", brute, answer)
			_ = f.Error(ErrCodeMismatch, msg, result)
			return NewExitError(ExitFailure, msg)
		}
		result.Verified = true
	}

	var runID string
	if opts.Journal != "" {
		runID, err = journalConverge(ctx, opts, list, hash, result, periods)
		if err != nil {
			_ = f.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to journal run", err)
		}
		logger.Info("run journaled", "run_id", runID, "db", opts.Journal)
	}

	return outputConverge(f, result, runID)
}

func journalConverge(ctx context.Context, opts *ConvergeOptions, list ir.ModuleList, hash string,
	result ConvergeResult, periods []engine.EdgePeriod) (string, error) {
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
		Mode:          store.ModeConverge,
		WiringHash:    hash,
		Wiring:        wiring.Format(list),
		Options:       opts.journalOptions(opts.MaxPresses),
		Target:        result.Target,
		Answer:        result.Answer,
		EngineVersion: ir.EngineVersion,
		StateVersion:  ir.StateVersion,
	}
	if err := st.WriteRun(ctx, run); err != nil {
		return "", err
	}

	recs := make([]store.PeriodRecord, len(periods))
	for i, p := range periods {
		recs[i] = store.PeriodRecord{Edge: p.Edge, Period: p.Period}
	}
	if err := st.WritePeriods(ctx, run.ID, recs); err != nil {
		return "", err
	}
	return run.ID, nil
}

func outputConverge(f *OutputFormatter, r ConvergeResult, runID string) error {
	return f.Emit(r, runID, func(w io.Writer) {
		if r.Convergence != r.Target {
			fmt.Fprintf(w, "Target:   %s (via %s)\n", r.Target, r.Convergence)
		} else {
			fmt.Fprintf(w, "Target:   %s\n", r.Target)
		}
		for _, p := range r.Periods {
			fmt.Fprintf(w, "  %-20s %s\n", p.Edge, Number(p.Period))
		}
		fmt.Fprintf(w, "Answer:   %s\n", Number(r.Answer))
		if r.Verified {
			fmt.Fprintln(w, "✓ Brute force agrees")
		}
		if runID != "" {
			fmt.Fprintf(w, "Run:      %s\n", runID)
		}
	})
}
