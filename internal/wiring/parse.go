package wiring

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/pulsenet/internal/ir"
)

// arrow separates a module declaration from its outputs.
const arrow = "->"

// ParseError reports a malformed wiring line.
type ParseError struct {
	Line    int
	Text    string
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Text)
	}
	return e.Message
}

// ParseString parses wiring in the line format.
func ParseString(s string) (ir.ModuleList, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads wiring in the line format. Blank lines are skipped. Module
// names must be unique; the first malformed line stops parsing.
func Parse(r io.Reader) (ir.ModuleList, error) {
	var (
		list ir.ModuleList
		seen = make(map[string]int)
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		spec, err := parseLine(text)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Message: err.Error()}
		}
		if first, dup := seen[spec.Name]; dup {
			return nil, &ParseError{
				Line:    lineNo,
				Text:    text,
				Message: fmt.Sprintf("module %q already declared on line %d", spec.Name, first),
			}
		}
		seen[spec.Name] = lineNo
		list = append(list, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read wiring: %w", err)
	}
	return list, nil
}

func parseLine(text string) (ir.ModuleSpec, error) {
	decl, rest, ok := strings.Cut(text, arrow)
	if !ok {
		return ir.ModuleSpec{}, fmt.Errorf("missing %q", arrow)
	}
	decl = strings.TrimSpace(decl)
	if decl == "" {
		return ir.ModuleSpec{}, fmt.Errorf("missing module name")
	}

	spec := ir.ModuleSpec{Outputs: parseOutputs(rest)}
	switch decl[0] {
	case '%':
		spec.Kind = ir.KindFlipFlop
		spec.Name = decl[1:]
	case '&':
		spec.Kind = ir.KindConjunction
		spec.Name = decl[1:]
	default:
		if decl != ir.BroadcasterName {
			return ir.ModuleSpec{}, fmt.Errorf("unprefixed module must be %q", ir.BroadcasterName)
		}
		spec.Kind = ir.KindBroadcast
		spec.Name = decl
	}

	if spec.Name == "" {
		return ir.ModuleSpec{}, fmt.Errorf("missing module name after %q", decl[:1])
	}
	if strings.ContainsAny(spec.Name, " \t,") {
		return ir.ModuleSpec{}, fmt.Errorf("invalid module name %q", spec.Name)
	}
	for _, out := range spec.Outputs {
		if out == "" {
			return ir.ModuleSpec{}, fmt.Errorf("empty output name")
		}
	}
	return spec, nil
}

func parseOutputs(rest string) []string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return []string{}
	}
	parts := strings.Split(rest, ",")
	outputs := make([]string, len(parts))
	for i, p := range parts {
		outputs[i] = strings.TrimSpace(p)
	}
	return outputs
}

// Format renders a module list back into the line format. Parse(Format(l))
// yields l for any list Parse can produce.
func Format(list ir.ModuleList) string {
	var sb strings.Builder
	for _, m := range list {
		sb.WriteString(m.Kind.Prefix())
		sb.WriteString(m.Name)
		sb.WriteString(" ")
		sb.WriteString(arrow)
		if len(m.Outputs) > 0 {
			sb.WriteString(" ")
			sb.WriteString(strings.Join(m.Outputs, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
