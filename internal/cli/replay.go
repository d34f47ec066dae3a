package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/store"
	"github.com/roach88/pulsenet/internal/wiring"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string   `json:"run_id"`
	Mode          string   `json:"mode"`
	Answer        int64    `json:"answer"`
	Triggers      int      `json:"triggers"`
	Periods       int      `json:"periods"`
	Deterministic bool     `json:"deterministic"`
	Mismatches    []string `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-simulate journaled runs and verify determinism",
		Long: `Re-simulate runs recorded with --journal and compare the results.

Aggregate runs must reproduce every per-press pulse count and state digest
as well as the totals. Converge runs must reproduce every edge period and
the answer. The journaled wiring text and engine options are used, so the
original wiring file is not needed.

Exit codes:
  0 - All runs reproduced exactly
  1 - At least one run differs
  2 - Command error (database not found, unknown run, etc.)

Examples:
  pulsenet replay --db runs.db
  pulsenet replay --db runs.db --run 01890a5d-ac96-774b-bcce-b302099a8057
  pulsenet replay --db runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	f := opts.formatter(cmd)
	logger := opts.logger(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = f.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var runIDs []string
	if opts.RunID != "" {
		runIDs = []string{opts.RunID}
	} else {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			_ = f.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		for _, r := range runs {
			runIDs = append(runIDs, r.ID)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}

	for _, id := range runIDs {
		log, err := st.LoadRunLog(ctx, id)
		if err != nil {
			_ = f.Error(ErrCodeJournal, err.Error(), map[string]string{"run_id": id})
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load run %s", id), err)
		}
		f.VerboseLog("Replaying %s run %s", log.Run.Mode, id)

		runResult := replayRun(ctx, log, logger)
		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	text := func(w io.Writer) { writeReplay(w, result) }
	if !result.AllDeterministic {
		return f.EmitFailure(ErrCodeMismatch, "determinism verification failed", result, text)
	}
	return f.Emit(result, "", text)
}

// replayRun re-simulates one journaled run and lists every difference.
func replayRun(ctx context.Context, log store.RunLog, logger *slog.Logger) ReplayRunResult {
	run := log.Run
	res := ReplayRunResult{
		RunID:    run.ID,
		Mode:     string(run.Mode),
		Answer:   run.Answer,
		Triggers: len(log.Triggers),
		Periods:  len(log.Periods),
	}
	mismatch := func(format string, args ...interface{}) {
		res.Mismatches = append(res.Mismatches, fmt.Sprintf(format, args...))
	}

	list, err := wiring.ParseString(run.Wiring)
	if err != nil {
		mismatch("journaled wiring does not parse: %v", err)
		return res
	}
	if hash, err := ir.WiringHash(list); err != nil || hash != run.WiringHash {
		mismatch("wiring hash %s does not match journaled %s", hash, run.WiringHash)
	}
	g, err := engine.NewGraph(list)
	if err != nil {
		mismatch("journaled wiring is invalid: %v", err)
		return res
	}
	e := engine.New(g, flagsFromJournal(run.Options).options(logger)...)

	switch run.Mode {
	case store.ModeAggregate:
		compareDigests := run.StateVersion == ir.StateVersion
		if !compareDigests {
			mismatch("state version %s differs from engine's %s; digests not compared", run.StateVersion, ir.StateVersion)
		}
		replayAggregate(ctx, e, log, compareDigests, mismatch)
	case store.ModeConverge:
		replayConverge(ctx, e, log, mismatch)
	default:
		mismatch("unknown mode %q", run.Mode)
	}

	res.Deterministic = len(res.Mismatches) == 0
	return res
}

func replayAggregate(ctx context.Context, e *engine.Engine, log store.RunLog, compareDigests bool,
	mismatch func(string, ...interface{})) {
	run := log.Run
	digests := &digestRecorder{graph: e.Graph()}
	e.Observe(digests)

	totals, err := engine.Aggregate(ctx, e, run.Presses)
	if err != nil {
		mismatch("replay failed: %v", err)
		return
	}

	if totals.Low != run.Low || totals.High != run.High {
		mismatch("totals low=%d high=%d, journaled low=%d high=%d", totals.Low, totals.High, run.Low, run.High)
	}
	if totals.Product() != run.Answer {
		mismatch("product %d, journaled %d", totals.Product(), run.Answer)
	}
	if totals.Looped != run.Looped || totals.LoopStart != run.LoopStart || totals.LoopLength != run.LoopLength {
		mismatch("loop start=%d length=%d, journaled start=%d length=%d",
			totals.LoopStart, totals.LoopLength, run.LoopStart, run.LoopLength)
	}

	got := digests.records
	if len(got) != len(log.Triggers) {
		mismatch("%d presses simulated, %d journaled", len(got), len(log.Triggers))
	}
	for i := 0; i < len(got) && i < len(log.Triggers); i++ {
		a, b := got[i], log.Triggers[i]
		if a.Press != b.Press || a.Low != b.Low || a.High != b.High {
			mismatch("press %d: low=%d high=%d, journaled press %d low=%d high=%d",
				a.Press, a.Low, a.High, b.Press, b.Low, b.High)
			continue
		}
		if compareDigests && a.StateDigest != b.StateDigest {
			mismatch("press %d: state digest differs", a.Press)
		}
	}
}

func replayConverge(ctx context.Context, e *engine.Engine, log store.RunLog, mismatch func(string, ...interface{})) {
	run := log.Run
	maxPresses := run.Options.MaxPresses
	if maxPresses <= 0 {
		maxPresses = engine.DefaultMaxPresses
	}

	finder, err := engine.NewPeriodFinder(e, run.Target, engine.WithMaxPresses(maxPresses))
	if err != nil {
		mismatch("replay failed: %v", err)
		return
	}
	periods, err := finder.Periods(ctx)
	if err != nil {
		mismatch("replay failed: %v", err)
		return
	}

	journaled := make(map[ir.Edge]int64, len(log.Periods))
	for _, p := range log.Periods {
		journaled[p.Edge] = p.Period
	}
	if len(periods) != len(journaled) {
		mismatch("%d edges watched, %d journaled", len(periods), len(journaled))
	}

	values := make([]int64, len(periods))
	for i, p := range periods {
		values[i] = p.Period
		want, ok := journaled[p.Edge]
		switch {
		case !ok:
			mismatch("edge %s not journaled", p.Edge)
		case want != p.Period:
			mismatch("edge %s: period %d, journaled %d", p.Edge, p.Period, want)
		}
	}

	answer, err := engine.LCM(values...)
	if err != nil {
		mismatch("replay failed: %v", err)
		return
	}
	if answer != run.Answer {
		mismatch("answer %d, journaled %d", answer, run.Answer)
	}
}

func writeReplay(w io.Writer, result ReplayResult) {
	fmt.Fprintf(w, "Replay Summary: %d run(s)\n\n", result.TotalRuns)
	for _, run := range result.Runs {
		mark := "✓"
		if !run.Deterministic {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s Run: %s (%s)\n", mark, run.RunID, run.Mode)
		if store.Mode(run.Mode) == store.ModeConverge {
			fmt.Fprintf(w, "  Answer: %s from %d edge periods\n", Number(run.Answer), run.Periods)
		} else {
			fmt.Fprintf(w, "  Product: %s over %d journaled presses\n", Number(run.Answer), run.Triggers)
		}
		for _, m := range run.Mismatches {
			fmt.Fprintf(w, "  Mismatch: %s\n", m)
		}
		fmt.Fprintln(w)
	}
	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs verified deterministic")
	} else {
		fmt.Fprintln(w, "✗ Determinism verification failed")
	}
}
