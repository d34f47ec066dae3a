package ir

// Version constants for the journal schema and engine.
const (
	// StateVersion is the snapshot encoding version. Bump when the bit
	// layout produced by the engine changes.
	StateVersion = "1"

	// EngineVersion is the pulsenet engine version.
	EngineVersion = "0.1.0"
)
