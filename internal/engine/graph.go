package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/pulsenet/internal/ir"
)

// Graph owns every module of a network together with its forward wiring
// (module outputs) and reverse wiring (predecessors). It is built once and
// then mutated in place by triggers; Reset returns it to rest without
// rebuilding anything.
//
// Graph is not safe for concurrent use. Independent graphs built from the
// same wiring share nothing and may be used side by side.
type Graph struct {
	wiring  ir.ModuleList
	modules map[string]*Module
	names   []string            // declared names, sorted
	preds   map[string][]string // predecessors of every destination, sorted
	bits    int                 // total snapshot width
}

// NewGraph builds a graph from a parsed module list. Names used only as
// outputs become sinks: pulses to them are counted and dropped. Every
// conjunction is connected to all of its predecessors before NewGraph
// returns.
func NewGraph(list ir.ModuleList) (*Graph, error) {
	g := &Graph{
		wiring:  slices.Clone(list),
		modules: make(map[string]*Module, len(list)),
		names:   make([]string, 0, len(list)),
	}

	for _, spec := range list {
		if spec.Name == "" {
			return nil, NewInvalidArgumentError("module with empty name")
		}
		if _, dup := g.modules[spec.Name]; dup {
			return nil, NewInvalidArgumentError(fmt.Sprintf("duplicate module %q", spec.Name))
		}
		g.modules[spec.Name] = NewModule(spec)
		g.names = append(g.names, spec.Name)
	}
	slices.Sort(g.names)

	g.preds = list.Predecessors()
	for dest, from := range g.preds {
		slices.Sort(from)
		if m, ok := g.modules[dest]; ok {
			m.ConnectInputs(from)
		}
	}

	for _, m := range g.modules {
		g.bits += m.stateBits()
	}
	return g, nil
}

// Module returns the named module, or false for sinks and unknown names.
func (g *Graph) Module(name string) (*Module, bool) {
	m, ok := g.modules[name]
	return m, ok
}

// Inputs returns the distinct immediate predecessors of name, sorted. It
// works for sinks as well as declared modules.
func (g *Graph) Inputs(name string) []string {
	return slices.Clone(g.preds[name])
}

// Names returns every declared module name, sorted.
func (g *Graph) Names() []string {
	return slices.Clone(g.names)
}

// Len returns the number of declared modules.
func (g *Graph) Len() int { return len(g.names) }

// Wiring returns the module list the graph was built from.
func (g *Graph) Wiring() ir.ModuleList {
	return slices.Clone(g.wiring)
}

// Reset returns every module to rest.
func (g *Graph) Reset() {
	for _, m := range g.modules {
		m.Reset()
	}
}

// Snapshot captures the full mutable state of the graph.
func (g *Graph) Snapshot() Snapshot {
	w := newBitWriter(g.bits)
	for _, name := range g.names {
		g.modules[name].appendState(w)
	}
	return w.snapshot()
}
