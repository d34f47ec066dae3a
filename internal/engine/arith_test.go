package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCD(t *testing.T) {
	assert.Equal(t, int64(1), GCD(3, 5))
	assert.Equal(t, int64(6), GCD(12, 18))
	assert.Equal(t, int64(7), GCD(0, 7))
	assert.Equal(t, int64(0), GCD(0, 0))
	assert.Equal(t, int64(4), GCD(-8, 12))
}

func TestLCM(t *testing.T) {
	got, err := LCM(3, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), got)

	got, err = LCM(4, 6, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(60), got)

	got, err = LCM(3821, 3847, 3877, 4001)
	require.NoError(t, err)
	assert.Equal(t, int64(228_015_083_119_399), got)
}

func TestLCM_Errors(t *testing.T) {
	_, err := LCM()
	assert.True(t, IsInvalidArgumentError(err))

	_, err = LCM(3, 0)
	assert.True(t, IsInvalidArgumentError(err))

	_, err = LCM(math.MaxInt64, 2)
	assert.True(t, IsOverflowError(err))
}
