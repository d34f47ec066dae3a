package wiring

import (
	"fmt"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pulsenet/internal/ir"
)

// schemaCUE constrains wiring documents. Outputs default to an empty list so
// terminal modules can omit them.
const schemaCUE = `
#Module: {
	kind:    "broadcast" | "flipflop" | "conjunction"
	outputs: *[] | [...string]
}
modules: [string]: #Module
`

// CompileError represents a CUE wiring error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadCUE reads and compiles a CUE wiring file.
func LoadCUE(path string) (ir.ModuleList, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wiring: %w", err)
	}
	return CompileCUE(string(src), path)
}

// CompileCUE compiles a CUE wiring document. Modules are returned sorted by
// name; outputs keep their declared order.
func CompileCUE(src, filename string) (ir.ModuleList, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	doc := ctx.CompileString(src, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	// The schema always declares modules, so check the document itself.
	if !doc.LookupPath(cue.ParsePath("modules")).Exists() {
		return nil, &CompileError{
			Field:   "modules",
			Message: "modules is required",
			Pos:     doc.Pos(),
		}
	}

	v := schema.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	modulesVal := v.LookupPath(cue.ParsePath("modules"))

	iter, err := modulesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var list ir.ModuleList
	for iter.Next() {
		spec, err := compileModule(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		list = append(list, spec)
	}

	slices.SortFunc(list, func(a, b ir.ModuleSpec) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return list, nil
}

func compileModule(name string, v cue.Value) (ir.ModuleSpec, error) {
	kindName, err := v.LookupPath(cue.ParsePath("kind")).String()
	if err != nil {
		return ir.ModuleSpec{}, formatCUEError(err)
	}
	kind, err := ir.ParseModuleKind(kindName)
	if err != nil {
		return ir.ModuleSpec{}, &CompileError{Field: name + ".kind", Message: err.Error(), Pos: v.Pos()}
	}
	if kind == ir.KindBroadcast && name != ir.BroadcasterName {
		return ir.ModuleSpec{}, &CompileError{
			Field:   name + ".kind",
			Message: fmt.Sprintf("broadcast module must be named %q", ir.BroadcasterName),
			Pos:     v.Pos(),
		}
	}

	outIter, err := v.LookupPath(cue.ParsePath("outputs")).List()
	if err != nil {
		return ir.ModuleSpec{}, formatCUEError(err)
	}
	outputs := []string{}
	for outIter.Next() {
		out, err := outIter.Value().String()
		if err != nil {
			return ir.ModuleSpec{}, formatCUEError(err)
		}
		outputs = append(outputs, out)
	}

	return ir.ModuleSpec{Name: name, Kind: kind, Outputs: outputs}, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
