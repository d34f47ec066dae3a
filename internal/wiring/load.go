package wiring

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/pulsenet/internal/ir"
)

// LoadFile loads a wiring file, choosing the format by extension: ".cue"
// files are compiled as CUE, anything else is parsed as the line format.
func LoadFile(path string) (ir.ModuleList, error) {
	if filepath.Ext(path) == ".cue" {
		return LoadCUE(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wiring: %w", err)
	}
	defer f.Close()

	list, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}
