package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalString(t *testing.T) {
	assert.Equal(t, "low", Low.String())
	assert.Equal(t, "high", High.String())
	assert.Equal(t, "Signal(7)", Signal(7).String())
}

func TestSignalInvert(t *testing.T) {
	assert.Equal(t, High, Low.Invert())
	assert.Equal(t, Low, High.Invert())
}

func TestSignalText(t *testing.T) {
	var s Signal
	require.NoError(t, s.UnmarshalText([]byte("high")))
	assert.Equal(t, High, s)

	assert.Error(t, s.UnmarshalText([]byte("HIGH")))

	_, err := Signal(9).MarshalText()
	assert.Error(t, err)
}

func TestPulseJSON(t *testing.T) {
	p := Pulse{Source: "a", Destination: "b", Signal: High}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"a","destination":"b","signal":"high"}`, string(data))

	var back Pulse
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestPulseString(t *testing.T) {
	p := Pulse{Source: "button", Destination: "broadcaster", Signal: Low}
	assert.Equal(t, "button -low-> broadcaster", p.String())
	assert.Equal(t, "a -> b", Edge{From: "a", To: "b"}.String())
}
