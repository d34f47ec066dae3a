package engine

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/ir"
)

func pulseStrings(ps []TracedPulse) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}

func TestEngine_FirstPressOrder(t *testing.T) {
	rec := NewRecorder()
	e := mustEngine(t, exampleInverter, WithObserver(rec))

	r, err := e.RunTrigger()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"button -low-> broadcaster",
		"broadcaster -low-> a",
		"broadcaster -low-> b",
		"broadcaster -low-> c",
		"a -high-> b",
		"b -high-> c",
		"c -high-> inv",
		"inv -low-> a",
		"a -low-> b",
		"b -low-> c",
		"c -low-> inv",
		"inv -high-> a",
	}, pulseStrings(rec.Pulses))

	assert.Equal(t, int64(1), r.Press)
	assert.Equal(t, int64(8), r.Low)
	assert.Equal(t, int64(4), r.High)
	assert.Equal(t, []TriggerResult{r}, rec.Triggers)
}

func TestEngine_SeriesFlipFlops(t *testing.T) {
	e := mustEngine(t, seriesFlipFlops)

	// button -low-> broadcaster, broadcaster -low-> a, a -high-> b (ignored).
	r, err := e.RunTrigger()
	require.NoError(t, err)
	assert.Equal(t, Counts{Low: 2, High: 1}, r.Counts)

	a, _ := e.Graph().Module("a")
	b, _ := e.Graph().Module("b")
	assert.True(t, a.IsOn())
	assert.False(t, b.IsOn())
}

func TestEngine_SinksAreCounted(t *testing.T) {
	e := mustEngine(t, "broadcaster -> out1, out2\n")

	r, err := e.RunTrigger()
	require.NoError(t, err)
	assert.Equal(t, Counts{Low: 3}, r.Counts)
}

func TestEngine_MissingBroadcaster(t *testing.T) {
	e := mustEngine(t, "%a -> b\n")

	r, err := e.RunTrigger()
	require.NoError(t, err)
	assert.Equal(t, Counts{Low: 1}, r.Counts, "seed pulse is counted and dropped")
}

func TestEngine_ExampleOutputPerPress(t *testing.T) {
	e := mustEngine(t, exampleOutput)

	want := []Counts{{Low: 4, High: 4}, {Low: 4, High: 2}, {Low: 5, High: 3}, {Low: 4, High: 2}}
	for i, w := range want {
		r, err := e.RunTrigger()
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), r.Press)
		assert.Equal(t, w, r.Counts, "press %d", i+1)
	}
	assert.Equal(t, int64(4), e.Presses())
}

func TestEngine_TriggerIsPureFunctionOfState(t *testing.T) {
	// Two graphs driven to the same state answer the next press identically.
	e1 := mustEngine(t, exampleOutput)
	e2 := mustEngine(t, exampleOutput)

	for i := 0; i < 3; i++ {
		r1, err := e1.RunTrigger()
		require.NoError(t, err)
		r2, err := e2.RunTrigger()
		require.NoError(t, err)

		assert.Equal(t, r1, r2)
		assert.Equal(t, e1.Graph().Snapshot(), e2.Graph().Snapshot())
	}
}

func TestEngine_ResetRewindsPresses(t *testing.T) {
	e := mustEngine(t, exampleOutput)
	first, err := e.RunTrigger()
	require.NoError(t, err)
	_, err = e.RunTrigger()
	require.NoError(t, err)

	e.Reset()
	assert.Equal(t, int64(0), e.Presses())

	again, err := e.RunTrigger()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestEngine_PulseQuota(t *testing.T) {
	e := mustEngine(t, feedback, WithMaxPulsesPerTrigger(100))

	r, err := e.RunTrigger()
	require.Error(t, err)
	assert.True(t, IsQuotaError(err))

	var pe *PulseQuotaError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, int64(1), pe.Press)
	assert.Equal(t, int64(101), pe.Pulses)
	assert.Equal(t, int64(100), pe.Limit)

	// button and broadcaster pulses are low, c feeds itself high forever.
	assert.Equal(t, Counts{Low: 2, High: 98}, r.Counts)
}

func TestEngine_QuotaLeavesQueueEmpty(t *testing.T) {
	e := mustEngine(t, feedback, WithMaxPulsesPerTrigger(10))
	_, err := e.RunTrigger()
	require.Error(t, err)
	assert.Equal(t, 0, e.queue.Len())
}

func TestEngine_CustomBroadcasterAndSeed(t *testing.T) {
	rec := NewRecorder()
	e := mustEngine(t, "broadcaster -> a\n%a -> sink\n",
		WithBroadcaster("a"),
		WithSeedSource("manual"),
		WithObserver(rec))

	_, err := e.RunTrigger()
	require.NoError(t, err)
	assert.Equal(t, []string{"manual -low-> a", "a -high-> sink"}, pulseStrings(rec.Pulses))
	assert.Equal(t, "a", e.Broadcaster())
}

func TestEngine_ObserveAndRemove(t *testing.T) {
	e := mustEngine(t, seriesFlipFlops)

	var seen []ir.Pulse
	remove := e.Observe(PulseFunc(func(_ int64, p ir.Pulse) {
		seen = append(seen, p)
	}))

	_, err := e.RunTrigger()
	require.NoError(t, err)
	assert.Len(t, seen, 3)

	remove()
	_, err = e.RunTrigger()
	require.NoError(t, err)
	assert.Len(t, seen, 3, "removed observer must not be called")
}

func TestEngine_ObserversInRegistrationOrder(t *testing.T) {
	var order []string
	first := PulseFunc(func(int64, ir.Pulse) { order = append(order, "first") })
	second := PulseFunc(func(int64, ir.Pulse) { order = append(order, "second") })

	e := mustEngine(t, "broadcaster -> \n", WithObserver(first))
	e.Observe(second)

	_, err := e.RunTrigger()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestEngine_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := mustEngine(t, seriesFlipFlops, WithLogger(logger))
	_, err := e.RunTrigger()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `pulse="broadcaster -low-> a"`)
	assert.Contains(t, out, "msg=\"trigger complete\" press=1 low=2 high=1")
}

func TestRecorder_PressFilter(t *testing.T) {
	rec := NewRecorder()
	e := mustEngine(t, seriesFlipFlops, WithObserver(rec))
	for i := 0; i < 2; i++ {
		_, err := e.RunTrigger()
		require.NoError(t, err)
	}

	second := rec.Press(2)
	require.Len(t, second, 4)
	assert.Equal(t, 1, second[0].Seq)
	assert.Equal(t, 4, second[3].Seq)
	assert.Equal(t, "b -high-> sink", second[3].String())
}
