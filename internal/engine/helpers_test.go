package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/wiring"
)

// Networks shared by the tests in this package.
const (
	// exampleInverter returns to rest after every press.
	exampleInverter = `broadcaster -> a, b, c
%a -> b
%b -> c
%c -> inv
&inv -> a
`

	// exampleOutput returns to rest after four presses and drives the
	// undeclared sink "output".
	exampleOutput = `broadcaster -> a
%a -> inv, con
&inv -> b
%b -> con
&con -> output
`

	// seriesFlipFlops is two flip-flops in series into a sink.
	seriesFlipFlops = `broadcaster -> a
%a -> b
%b -> sink
`

	// delayedLoop never returns to rest: y's memory of the broadcaster
	// and x's memory of y settle after press 1, then a and b cycle with
	// period 4. The loop starts at index 1.
	delayedLoop = `broadcaster -> y, a
&y -> x
&x -> sink
%a -> b
%b -> sink2
`

	// feedback never reaches quiescence.
	feedback = `broadcaster -> c
&c -> c
`
)

func mustGraph(t *testing.T, text string) *Graph {
	t.Helper()
	list, err := wiring.ParseString(text)
	require.NoError(t, err)
	g, err := NewGraph(list)
	require.NoError(t, err)
	return g
}

func mustEngine(t *testing.T, text string, opts ...Option) *Engine {
	t.Helper()
	return New(mustGraph(t, text), opts...)
}
