package wiring

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pulsenet/internal/ir"
)

// Diagnostic codes (W200-W299).
const (
	CodeSink              = "W201" // output name with no declaration
	CodeNoBroadcaster     = "W202" // nothing to seed triggers into
	CodeUnreachable       = "W203" // module never receives a pulse
	CodeOrphanConjunction = "W204" // conjunction with no inputs
	CodeUnstableFeedback  = "W205" // loop without a flip-flop
)

// Diagnostic levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
)

// Diagnostic is a structural observation about a wiring. Diagnostics never
// prevent simulation; the engine treats sinks and unreachable modules as
// well-defined.
type Diagnostic struct {
	Code    string   `json:"code"`
	Level   string   `json:"level"`
	Modules []string `json:"modules"`
	Message string   `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Code, d.Level, d.Message)
}

// Diagnose inspects a module list and returns every diagnostic found,
// ordered by code and then by module name.
func Diagnose(list ir.ModuleList) []Diagnostic {
	var diags []Diagnostic

	declared := make(map[string]ir.ModuleSpec, len(list))
	for _, m := range list {
		declared[m.Name] = m
	}
	preds := list.Predecessors()

	// W201: sinks
	var sinks []string
	for name := range preds {
		if _, ok := declared[name]; !ok {
			sinks = append(sinks, name)
		}
	}
	slices.Sort(sinks)
	for _, s := range sinks {
		diags = append(diags, Diagnostic{
			Code:    CodeSink,
			Level:   LevelInfo,
			Modules: []string{s},
			Message: fmt.Sprintf("%q is an output of %s but is not declared; pulses to it are counted and dropped",
				s, strings.Join(preds[s], ", ")),
		})
	}

	// W202/W203: reachability from the broadcaster
	if _, ok := declared[ir.BroadcasterName]; !ok {
		diags = append(diags, Diagnostic{
			Code:    CodeNoBroadcaster,
			Level:   LevelWarning,
			Modules: []string{},
			Message: fmt.Sprintf("no %q module; every trigger delivers one low pulse and stops", ir.BroadcasterName),
		})
	} else {
		reached := reachable(list, ir.BroadcasterName, "")
		var unreached []string
		for _, m := range list {
			if m.Name != ir.BroadcasterName && !reached[m.Name] {
				unreached = append(unreached, m.Name)
			}
		}
		slices.Sort(unreached)
		for _, name := range unreached {
			diags = append(diags, Diagnostic{
				Code:    CodeUnreachable,
				Level:   LevelWarning,
				Modules: []string{name},
				Message: fmt.Sprintf("%q is not reachable from %q and never changes state", name, ir.BroadcasterName),
			})
		}
	}

	// W204: conjunctions nobody feeds
	var orphans []string
	for _, m := range list {
		if m.Kind == ir.KindConjunction && len(preds[m.Name]) == 0 {
			orphans = append(orphans, m.Name)
		}
	}
	slices.Sort(orphans)
	for _, name := range orphans {
		diags = append(diags, Diagnostic{
			Code:    CodeOrphanConjunction,
			Level:   LevelWarning,
			Modules: []string{name},
			Message: fmt.Sprintf("conjunction %q has no inputs", name),
		})
	}

	// W205: feedback loops a flip-flop never interrupts
	for _, loop := range feedbackLoops(list) {
		stable := false
		for _, name := range loop {
			if declared[name].Kind == ir.KindFlipFlop {
				stable = true
				break
			}
		}
		if stable {
			continue
		}
		diags = append(diags, Diagnostic{
			Code:    CodeUnstableFeedback,
			Level:   LevelWarning,
			Modules: loop,
			Message: fmt.Sprintf("feedback loop without a flip-flop may never reach quiescence: %s",
				strings.Join(loop, ", ")),
		})
	}

	return diags
}

// reachable returns every name reachable from start by following outputs.
// The boundary, if non-empty, is recorded but not expanded.
func reachable(list ir.ModuleList, start, boundary string) map[string]bool {
	outputs := make(map[string][]string, len(list))
	for _, m := range list {
		outputs[m.Name] = m.Outputs
	}

	seen := map[string]bool{start: true}
	frontier := []string{start}
	for len(frontier) > 0 {
		node := frontier[0]
		frontier = frontier[1:]
		if node == boundary {
			continue
		}
		for _, out := range outputs[node] {
			if !seen[out] {
				seen[out] = true
				frontier = append(frontier, out)
			}
		}
	}
	return seen
}

// feedbackLoops returns the strongly connected components of the declared
// wiring that contain a cycle (size > 1, or a self-loop). Each loop is
// sorted by name and loops are ordered by their first member.
func feedbackLoops(list ir.ModuleList) [][]string {
	graph := make(map[string][]string, len(list))
	names := make([]string, 0, len(list))
	for _, m := range list {
		graph[m.Name] = m.Outputs
		names = append(names, m.Name)
	}
	slices.Sort(names)

	var loops [][]string
	for _, scc := range tarjanSCC(graph, names) {
		if len(scc) == 1 && !slices.Contains(graph[scc[0]], scc[0]) {
			continue
		}
		slices.Sort(scc)
		loops = append(loops, scc)
	}
	slices.SortFunc(loops, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})
	return loops
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in the given order so the result is deterministic.
// Edges to undeclared sinks are ignored.
func tarjanSCC(graph map[string][]string, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, declared := graph[w]; !declared {
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}
