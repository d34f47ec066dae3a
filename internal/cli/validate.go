package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/wiring"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Target      string
	Broadcaster string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	Modules     int                 `json:"modules"`
	Diagnostics []wiring.Diagnostic `json:"diagnostics"`
	Structure   *StructureResult    `json:"structure,omitempty"`
}

// StructureResult describes the subcircuits feeding a convergence node.
type StructureResult struct {
	Target      string              `json:"target"`
	Convergence string              `json:"convergence"`
	Subcircuits []wiring.Subcircuit `json:"subcircuits"`
	Overlaps    map[string][]string `json:"overlaps,omitempty"`

	// Independent is true when the subcircuits are disjoint and each feeds
	// the convergence node through exactly one exit, the shape converge
	// assumes.
	Independent bool `json:"independent"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <wiring>",
		Short: "Check a wiring without simulating it",
		Long: `Parse a wiring and report structural diagnostics: undeclared outputs,
a missing broadcaster, unreachable modules, conjunctions without inputs and
feedback loops without a flip-flop.

With --target, also split the wiring into one subcircuit per broadcaster
output and report whether they are independent counters feeding a single
convergence node, which converge relies on.

Exit codes:
  0 - No warnings (and independent subcircuits, with --target)
  1 - Warnings found, or subcircuits overlap
  2 - Command error (unreadable or malformed wiring, unknown target)

Examples:
  pulsenet validate input.txt
  pulsenet validate input.txt --target rx --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "check the convergence structure feeding this module")
	cmd.Flags().StringVar(&opts.Broadcaster, "broadcaster", ir.BroadcasterName, "module that receives the seed pulse")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	list, g, err := loadGraph(f, path)
	if err != nil {
		return err
	}

	result := ValidationResult{
		Valid:       true,
		Modules:     len(list),
		Diagnostics: wiring.Diagnose(list),
	}
	if result.Diagnostics == nil {
		result.Diagnostics = []wiring.Diagnostic{}
	}
	for _, d := range result.Diagnostics {
		f.VerboseLog("%s", d)
		if d.Level == wiring.LevelWarning {
			result.Valid = false
		}
	}

	if opts.Target != "" {
		if len(g.Inputs(opts.Target)) == 0 {
			return simulationError(f, engine.NewUnknownModuleError(opts.Target, "no module drives target"))
		}
		s := structure(list, g, opts.Broadcaster, opts.Target)
		result.Structure = &s
		if !s.Independent {
			result.Valid = false
		}
	}

	return outputValidation(f, result)
}

// structure partitions the wiring at the target's convergence node.
func structure(list ir.ModuleList, g *engine.Graph, broadcaster, target string) StructureResult {
	convergence := engine.ResolveConvergence(g, target)
	subs := wiring.Partition(list, broadcaster, convergence)
	overlaps := wiring.Overlaps(subs)

	independent := len(subs) > 0 && len(overlaps) == 0
	for _, s := range subs {
		if len(s.Exits) != 1 {
			independent = false
		}
	}
	return StructureResult{
		Target:      target,
		Convergence: convergence,
		Subcircuits: subs,
		Overlaps:    overlaps,
		Independent: independent,
	}
}

func outputValidation(f *OutputFormatter, result ValidationResult) error {
	text := func(w io.Writer) {
		for _, d := range result.Diagnostics {
			fmt.Fprintf(w, "%s\n", d)
		}
		if s := result.Structure; s != nil {
			writeStructure(w, *s)
		}
		if result.Valid {
			fmt.Fprintf(w, "✓ Wiring valid (%d modules)\n", result.Modules)
		} else {
			fmt.Fprintln(w, "✗ Validation failed")
		}
	}

	if !result.Valid {
		return f.EmitFailure("E_INVALID", "validation failed", result, text)
	}
	return f.Emit(result, "", text)
}

func writeStructure(w io.Writer, s StructureResult) {
	fmt.Fprintf(w, "Convergence node for %s: %s\n", s.Target, s.Convergence)
	for _, sub := range s.Subcircuits {
		fmt.Fprintf(w, "  %-12s %d modules, exits %v\n", sub.Root, len(sub.Members), sub.Exits)
	}
	shared := make([]string, 0, len(s.Overlaps))
	for m := range s.Overlaps {
		shared = append(shared, m)
	}
	slices.Sort(shared)
	for _, m := range shared {
		fmt.Fprintf(w, "  shared: %s (%v)\n", m, s.Overlaps[m])
	}
}
