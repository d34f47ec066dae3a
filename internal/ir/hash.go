package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix enables future algorithm migration.
const (
	DomainWiring = "pulsenet/wiring/v1"
	DomainState  = "pulsenet/state/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// WiringHash computes the content hash of a module list. Two lists hash the
// same only if they declare the same modules, kinds and outputs in the same
// order, so a journal can tell whether a replay uses the wiring it recorded.
func WiringHash(list ModuleList) (string, error) {
	modules := make([]any, len(list))
	for i, m := range list {
		outputs := m.Outputs
		if outputs == nil {
			outputs = []string{}
		}
		modules[i] = map[string]any{
			"name":    m.Name,
			"kind":    m.Kind.String(),
			"outputs": outputs,
		}
	}

	canonical, err := MarshalCanonical(map[string]any{"modules": modules})
	if err != nil {
		return "", fmt.Errorf("WiringHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainWiring, canonical), nil
}

// StateDigest hashes a packed state snapshot. The digest is what the journal
// stores per trigger; the engine compares snapshots directly.
func StateDigest(packed []byte) string {
	obj := map[string]any{
		"bits":    hex.EncodeToString(packed),
		"version": StateVersion,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		// Only strings are marshaled above.
		panic(err)
	}
	return hashWithDomain(DomainState, canonical)
}

// MustWiringHash is like WiringHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustWiringHash(list ModuleList) string {
	h, err := WiringHash(list)
	if err != nil {
		panic(err)
	}
	return h
}
