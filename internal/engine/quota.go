package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer counts the pulses delivered during one trigger and enforces
// a maximum.
//
// A well-formed network always reaches quiescence, but a wiring such as
// "&c -> c" feeds a conjunction its own high output forever. The quota turns
// that into an error instead of a hang.
type QuotaEnforcer struct {
	maxPulses int64 // Maximum pulses per trigger
	current   int64 // Pulses delivered so far in this trigger
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
// A limit of zero or less disables the quota.
func NewQuotaEnforcer(maxPulses int64) *QuotaEnforcer {
	return &QuotaEnforcer{
		maxPulses: maxPulses,
	}
}

// Check increments the pulse counter and validates against the limit.
//
// Returns PulseQuotaError if the quota is exceeded. Called once per
// delivered pulse.
func (q *QuotaEnforcer) Check(press int64) error {
	q.current++
	if q.maxPulses > 0 && q.current > q.maxPulses {
		return &PulseQuotaError{
			Press:  press,
			Pulses: q.current,
			Limit:  q.maxPulses,
		}
	}
	return nil
}

// Reset resets the pulse counter to 0. Called at the start of each trigger.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the current pulse count.
func (q *QuotaEnforcer) Current() int64 {
	return q.current
}

// MaxPulses returns the pulse limit.
func (q *QuotaEnforcer) MaxPulses() int64 {
	return q.maxPulses
}

// PulseQuotaError is returned when a trigger delivers more pulses than the
// quota allows. The trigger is abandoned mid-flight; the graph is left in
// whatever state it reached and should be Reset before further use.
type PulseQuotaError struct {
	Press  int64 // The trigger that exceeded the quota
	Pulses int64 // Pulses delivered including the one that tripped the quota
	Limit  int64 // Maximum allowed pulses
}

// Error implements the error interface.
func (e *PulseQuotaError) Error() string {
	return fmt.Sprintf("%s: press %d exceeded pulse quota: %d pulses > %d limit",
		ErrCodeQuotaExceeded, e.Press, e.Pulses, e.Limit)
}

// RuntimeError returns the error type for matching.
func (e *PulseQuotaError) RuntimeError() string {
	return "PulseQuotaError"
}

// IsPulseQuotaError returns true if the error is a PulseQuotaError.
// Uses errors.As to handle wrapped errors.
func IsPulseQuotaError(err error) bool {
	var pe *PulseQuotaError
	return errors.As(err, &pe)
}
