package wiring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/ir"
)

const sampleInverter = `broadcaster -> a, b, c
%a -> b
%b -> c
%c -> inv
&inv -> a
`

func TestParse_Kinds(t *testing.T) {
	list, err := ParseString(sampleInverter)
	require.NoError(t, err)
	require.Len(t, list, 5)

	assert.Equal(t, ir.ModuleSpec{Name: "broadcaster", Kind: ir.KindBroadcast, Outputs: []string{"a", "b", "c"}}, list[0])
	assert.Equal(t, ir.ModuleSpec{Name: "a", Kind: ir.KindFlipFlop, Outputs: []string{"b"}}, list[1])
	assert.Equal(t, ir.ModuleSpec{Name: "inv", Kind: ir.KindConjunction, Outputs: []string{"a"}}, list[4])
}

func TestParse_WhitespaceAndBlankLines(t *testing.T) {
	list, err := ParseString("\n  broadcaster ->a ,  b\n\n%a->   out\n%b ->\n")
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, []string{"a", "b"}, list[0].Outputs)
	assert.Equal(t, []string{"out"}, list[1].Outputs)
	assert.Equal(t, []string{}, list[2].Outputs, "a module may have no outputs")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		message string
	}{
		{"missing arrow", "broadcaster a, b", 1, "missing"},
		{"unprefixed name", "broadcaster -> a\nrelay -> b", 2, "unprefixed module"},
		{"empty name", "% -> a", 1, "missing module name"},
		{"duplicate", "%a -> b\n%b -> a\n&a -> b", 3, "already declared on line 1"},
		{"empty output", "%a -> b,,c", 1, "empty output"},
		{"space in name", "%a b -> c", 1, "invalid module name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			require.Error(t, err)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	list, err := ParseString(sampleInverter + "%d ->\n")
	require.NoError(t, err)

	again, err := ParseString(Format(list))
	require.NoError(t, err)
	assert.Equal(t, list, again)
	assert.Contains(t, Format(list), "&inv -> a\n")
	assert.Contains(t, Format(list), "%d ->\n")
}

func TestLoadFile_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "wiring.txt")
	require.NoError(t, os.WriteFile(txt, []byte(sampleInverter), 0644))

	cuePath := filepath.Join(dir, "wiring.cue")
	require.NoError(t, os.WriteFile(cuePath, []byte(sampleInverterCUE), 0644))

	fromText, err := LoadFile(txt)
	require.NoError(t, err)
	fromCUE, err := LoadFile(cuePath)
	require.NoError(t, err)

	assert.Equal(t, ir.MustWiringHash(sortedByName(fromText)), ir.MustWiringHash(fromCUE))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open wiring")
}

func TestLoadFile_ReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("nonsense"), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.txt")

	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}
