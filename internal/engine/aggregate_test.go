package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteTotals presses n times and sums the counts directly.
func bruteTotals(t *testing.T, text string, n int) Counts {
	t.Helper()
	e := mustEngine(t, text)
	var sum Counts
	for i := 0; i < n; i++ {
		r, err := e.RunTrigger()
		require.NoError(t, err)
		sum.Low += r.Low
		sum.High += r.High
	}
	return sum
}

func TestAggregate_Examples(t *testing.T) {
	tests := []struct {
		name       string
		wiring     string
		presses    int64
		low, high  int64
		product    int64
		loopStart  int64
		loopLength int64
	}{
		{"inverter", exampleInverter, 1000, 8000, 4000, 32000000, 0, 1},
		{"output", exampleOutput, 1000, 4250, 2750, 11687500, 0, 4},
		{"series", seriesFlipFlops, 1_000_000, 2_750_000, 750_000, 2_062_500_000_000, 0, 4},
		{"delayed loop", delayedLoop, 1000, 4750, 1750, 8312500, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustEngine(t, tt.wiring)
			got, err := Aggregate(context.Background(), e, tt.presses)
			require.NoError(t, err)

			assert.Equal(t, tt.presses, got.Presses)
			assert.Equal(t, tt.low, got.Low)
			assert.Equal(t, tt.high, got.High)
			assert.Equal(t, tt.product, got.Product())
			assert.True(t, got.Looped)
			assert.Equal(t, tt.loopStart, got.LoopStart)
			assert.Equal(t, tt.loopLength, got.LoopLength)
			assert.Equal(t, tt.loopStart+tt.loopLength, got.Simulated)
			assert.Len(t, got.PerTrigger, int(got.Simulated))
		})
	}
}

func TestAggregate_MatchesBruteForce(t *testing.T) {
	for _, wiring := range []string{exampleInverter, exampleOutput, seriesFlipFlops, delayedLoop} {
		for _, n := range []int{1, 2, 3, 5, 7, 10, 101} {
			e := mustEngine(t, wiring)
			got, err := Aggregate(context.Background(), e, int64(n))
			require.NoError(t, err)

			want := bruteTotals(t, wiring, n)
			assert.Equal(t, want.Low, got.Low, "n=%d\n%s", n, wiring)
			assert.Equal(t, want.High, got.High, "n=%d\n%s", n, wiring)
		}
	}
}

func TestAggregate_RemainderAfterDelayedLoopStart(t *testing.T) {
	// Loop (1, 4): press 1 once, then presses 2..5 repeat. For n=7 the six
	// looped presses are one full cycle plus presses 2 and 3 again.
	e := mustEngine(t, delayedLoop)
	got, err := Aggregate(context.Background(), e, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(32), got.Low)
	assert.Equal(t, int64(13), got.High)
	assert.Equal(t, int64(416), got.Product())
}

func TestAggregate_LinearInFullCycles(t *testing.T) {
	// Series flip-flops return to rest every 4 presses; 4,000,002 presses
	// is 1,000,000 full cycles plus the first two presses.
	e := mustEngine(t, seriesFlipFlops)
	million, err := Aggregate(context.Background(), e, 1_000_000)
	require.NoError(t, err)

	e = mustEngine(t, seriesFlipFlops)
	more, err := Aggregate(context.Background(), e, 4_000_002)
	require.NoError(t, err)

	first := million.PerTrigger[0]
	second := million.PerTrigger[1]
	assert.Equal(t, 4*million.Low+first.Low+second.Low, more.Low)
	assert.Equal(t, 4*million.High+first.High+second.High, more.High)
	assert.Equal(t, int64(11_000_005), more.Low)
	assert.Equal(t, int64(3_000_002), more.High)
}

func TestAggregate_NoLoopWithinN(t *testing.T) {
	e := mustEngine(t, exampleOutput)
	got, err := Aggregate(context.Background(), e, 3)
	require.NoError(t, err)

	assert.False(t, got.Looped)
	assert.Equal(t, int64(3), got.Simulated)
	assert.Equal(t, int64(13), got.Low)
	assert.Equal(t, int64(9), got.High)
}

func TestAggregate_ZeroPresses(t *testing.T) {
	e := mustEngine(t, exampleOutput)
	got, err := Aggregate(context.Background(), e, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(0), got.Product())
	assert.Equal(t, int64(0), got.Simulated)
	assert.Equal(t, int64(0), e.Presses())
}

func TestAggregate_NegativePresses(t *testing.T) {
	e := mustEngine(t, exampleOutput)
	_, err := Aggregate(context.Background(), e, -1)
	assert.True(t, IsInvalidArgumentError(err))
}

func TestAggregate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := mustEngine(t, exampleOutput)
	_, err := Aggregate(ctx, e, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregate_PropagatesQuotaError(t *testing.T) {
	e := mustEngine(t, feedback, WithMaxPulsesPerTrigger(50))
	_, err := Aggregate(context.Background(), e, 10)
	require.Error(t, err)
	assert.True(t, IsQuotaError(err))
	assert.Contains(t, err.Error(), "press 1:")
}

func TestAggregate_Overflow(t *testing.T) {
	// Twelve pulses per press over 2^62 presses.
	e := mustEngine(t, exampleInverter)
	_, err := Aggregate(context.Background(), e, 1<<62)
	require.Error(t, err)
	assert.True(t, IsOverflowError(err))
}
