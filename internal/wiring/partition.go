package wiring

import (
	"slices"

	"github.com/roach88/pulsenet/internal/ir"
)

// Subcircuit is the part of the wiring driven by one broadcaster output.
type Subcircuit struct {
	// Root is the broadcaster output the subcircuit starts from.
	Root string `json:"root"`
	// Members are every module reachable from Root without passing through
	// the boundary, sorted by name. The boundary itself is not a member.
	Members []string `json:"members"`
	// Exits are the members wired directly into the boundary.
	Exits []string `json:"exits"`
}

// Partition splits the wiring into one subcircuit per broadcaster output,
// stopping at boundary (typically the convergence node feeding the final
// output). Subcircuits of a well-formed counter network are disjoint and
// each has exactly one exit; Overlaps reports when they are not.
func Partition(list ir.ModuleList, broadcaster, boundary string) []Subcircuit {
	root, ok := list.Lookup(broadcaster)
	if !ok {
		return nil
	}

	outputs := make(map[string][]string, len(list))
	for _, m := range list {
		outputs[m.Name] = m.Outputs
	}

	subs := make([]Subcircuit, 0, len(root.Outputs))
	for _, start := range root.Outputs {
		reached := reachable(list, start, boundary)
		sub := Subcircuit{Root: start, Members: []string{}, Exits: []string{}}
		for name := range reached {
			if name == boundary || name == broadcaster {
				continue
			}
			sub.Members = append(sub.Members, name)
			if boundary != "" && slices.Contains(outputs[name], boundary) {
				sub.Exits = append(sub.Exits, name)
			}
		}
		slices.Sort(sub.Members)
		slices.Sort(sub.Exits)
		subs = append(subs, sub)
	}
	return subs
}

// Overlaps returns, for every module that belongs to more than one
// subcircuit, the roots of the subcircuits sharing it.
func Overlaps(subs []Subcircuit) map[string][]string {
	owners := make(map[string][]string)
	for _, s := range subs {
		for _, m := range s.Members {
			owners[m] = append(owners[m], s.Root)
		}
	}
	shared := make(map[string][]string)
	for m, roots := range owners {
		if len(roots) > 1 {
			shared[m] = roots
		}
	}
	return shared
}
