package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/pulsenet/internal/ir"
)

// RuntimeError represents an error detected while simulating a network.
//
// Runtime errors include:
//   - Unknown module: a query names a module the wiring never mentions
//   - Assumption violated: a convergence input never fired within the limit
//   - Pulse quota exceeded: one trigger produced too many pulses
//   - Invalid argument: a negative press count, a malformed graph
//   - Overflow: a count or LCM does not fit in int64
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Module names the module the error is about, if any.
	Module string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownModule indicates a query referenced a name not in the graph.
	ErrCodeUnknownModule RuntimeErrorCode = "UNKNOWN_MODULE"

	// ErrCodeAssumptionViolated indicates the graph lacks the structure a
	// query depends on.
	ErrCodeAssumptionViolated RuntimeErrorCode = "ASSUMPTION_VIOLATED"

	// ErrCodeQuotaExceeded indicates a trigger exceeded its pulse quota.
	ErrCodeQuotaExceeded RuntimeErrorCode = "PULSE_QUOTA_EXCEEDED"

	// ErrCodeInvalidArgument indicates a caller passed an unusable value.
	ErrCodeInvalidArgument RuntimeErrorCode = "INVALID_ARGUMENT"

	// ErrCodeOverflow indicates a result does not fit in int64.
	ErrCodeOverflow RuntimeErrorCode = "OVERFLOW"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("%s: %s (module=%s)", e.Code, e.Message, e.Module)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewUnknownModuleError creates a RuntimeError for a missing module.
func NewUnknownModuleError(name, message string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownModule,
		Message: message,
		Module:  name,
	}
}

// NewInvalidArgumentError creates a RuntimeError for a bad argument.
func NewInvalidArgumentError(message string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidArgument,
		Message: message,
	}
}

// NewOverflowError creates a RuntimeError for an int64 overflow.
func NewOverflowError(what string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeOverflow,
		Message: what + " overflows int64",
	}
}

// IsUnknownModuleError returns true if the error is an unknown module error.
// Uses errors.As to handle wrapped errors.
func IsUnknownModuleError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownModule
	}
	return false
}

// IsAssumptionError returns true if the error reports a violated structural
// assumption. Matches both RuntimeError with ErrCodeAssumptionViolated and
// AssumptionError.
func IsAssumptionError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeAssumptionViolated
	}
	var ae *AssumptionError
	return errors.As(err, &ae)
}

// IsQuotaError returns true if the error is a pulse quota error.
// Matches both RuntimeError with ErrCodeQuotaExceeded and PulseQuotaError.
func IsQuotaError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeQuotaExceeded
	}
	var pe *PulseQuotaError
	return errors.As(err, &pe)
}

// IsInvalidArgumentError returns true if the error is an invalid argument error.
func IsInvalidArgumentError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidArgument
	}
	return false
}

// IsOverflowError returns true if the error is an overflow error.
func IsOverflowError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeOverflow
	}
	return false
}

// AssumptionError is returned when the convergence structure does not hold:
// one or more watched edges never carried a high pulse within the press
// limit. The periodic-counter reading of the graph is then wrong and the
// LCM answer would be meaningless.
type AssumptionError struct {
	Edges      []ir.Edge // Edges that never fired high
	MaxPresses int64     // Press limit that was reached
}

// Error implements the error interface.
func (e *AssumptionError) Error() string {
	names := make([]string, len(e.Edges))
	for i, edge := range e.Edges {
		names[i] = edge.String()
	}
	return fmt.Sprintf("%s: no high pulse on %s within %d presses",
		ErrCodeAssumptionViolated, strings.Join(names, ", "), e.MaxPresses)
}

// RuntimeError returns the error type for matching.
func (e *AssumptionError) RuntimeError() string {
	return "AssumptionError"
}
