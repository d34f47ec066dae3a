package harness

import (
	"fmt"

	"github.com/roach88/pulsenet/internal/engine"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Errors contains mismatch descriptions. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Totals is the aggregate answer, if the scenario asked for one.
	Totals *engine.Totals `json:"totals,omitempty"`

	// Answer is the convergence answer, if the scenario asked for one.
	Answer *int64 `json:"answer,omitempty"`

	// Periods are the per-edge periods behind Answer.
	Periods []engine.EdgePeriod `json:"periods,omitempty"`

	// ErrorCode is the code of the simulation error that stopped a query,
	// empty if none did.
	ErrorCode string `json:"error_code,omitempty"`
}

// NewResult returns a passing result with no errors.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// Failf records a mismatch and fails the result.
func (r *Result) Failf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
