package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/harness"
	"github.com/roach88/pulsenet/internal/ir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	EngineFlags
	Presses int64
}

// TraceEvent is one delivered pulse in the trace timeline.
type TraceEvent struct {
	Press int64  `json:"press"`
	Seq   int    `json:"seq"`
	Pulse string `json:"pulse"` // "source -signal-> destination"
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Presses  int64        `json:"presses"`
	Timeline []TraceEvent `json:"timeline"`
	Low      int64        `json:"low"`
	High     int64        `json:"high"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <wiring>",
		Short: "Print every pulse in delivery order",
		Long: `Press the button and print every delivered pulse in order, including
the seed pulse and pulses to undeclared outputs.

Examples:
  pulsenet trace input.txt
  pulsenet trace input.txt --presses 4
  pulsenet trace input.txt --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64VarP(&opts.Presses, "presses", "n", 1, "number of button presses")
	opts.EngineFlags.register(cmd)

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	list, _, err := loadGraph(f, path)
	if err != nil {
		return err
	}

	pulses, err := harness.Trace(list, opts.Presses, opts.options(opts.logger(cmd))...)
	if err != nil {
		return simulationError(f, err)
	}

	result := TraceResult{
		Presses:  opts.Presses,
		Timeline: make([]TraceEvent, len(pulses)),
	}
	for i, tp := range pulses {
		result.Timeline[i] = TraceEvent{Press: tp.Press, Seq: tp.Seq, Pulse: tp.Pulse.String()}
		if tp.Signal == ir.High {
			result.High++
		} else {
			result.Low++
		}
	}

	return f.Emit(result, "", func(w io.Writer) {
		writeTimeline(w, result, opts.Presses > 1)
	})
}

// writeTimeline prints one line per pulse, with a header per press when
// more than one press was traced.
func writeTimeline(w io.Writer, result TraceResult, headers bool) {
	for i, ev := range result.Timeline {
		if headers && ev.Seq == 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "Press %d\n", ev.Press)
		}
		fmt.Fprintf(w, "  %4d  %s\n", ev.Seq, ev.Pulse)
	}
	fmt.Fprintf(w, "\n%s pulses (%s low, %s high)\n",
		Number(result.Low+result.High), Number(result.Low), Number(result.High))
}
