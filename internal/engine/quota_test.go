package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaEnforcer_WithinLimit(t *testing.T) {
	q := NewQuotaEnforcer(10)

	for i := 0; i < 10; i++ {
		err := q.Check(1)
		assert.NoError(t, err, "pulse %d should be allowed", i+1)
	}

	assert.Equal(t, int64(10), q.Current())
	assert.Equal(t, int64(10), q.MaxPulses())
}

func TestQuotaEnforcer_ExceedsLimit(t *testing.T) {
	q := NewQuotaEnforcer(5)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Check(7))
	}

	err := q.Check(7)
	require.Error(t, err)

	var pe *PulseQuotaError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, int64(7), pe.Press)
	assert.Equal(t, int64(6), pe.Pulses)
	assert.Equal(t, int64(5), pe.Limit)
	assert.Contains(t, err.Error(), "press 7 exceeded pulse quota")
}

func TestQuotaEnforcer_Reset(t *testing.T) {
	q := NewQuotaEnforcer(2)
	require.NoError(t, q.Check(1))
	require.NoError(t, q.Check(1))

	q.Reset()
	assert.Equal(t, int64(0), q.Current())
	assert.NoError(t, q.Check(2))
}

func TestQuotaEnforcer_Disabled(t *testing.T) {
	q := NewQuotaEnforcer(0)
	for i := 0; i < 1000; i++ {
		require.NoError(t, q.Check(1))
	}
}

func TestIsQuotaError_Wrapped(t *testing.T) {
	err := fmt.Errorf("simulate: %w", &PulseQuotaError{Press: 1, Pulses: 3, Limit: 2})
	assert.True(t, IsQuotaError(err))
	assert.True(t, IsPulseQuotaError(err))
	assert.False(t, IsAssumptionError(err))
}
