package harness

import (
	"github.com/roach88/qcanvas/internal/ir"
	"github.com/roach88/qcanvas/internal/store"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// Gates is the optimized gate-name sequence. Nil if the scenario failed
	// before passes completed.
	Gates []string `json:"gates,omitempty"`

	// Stats are recomputed on the optimized circuit.
	Stats ir.Stats `json:"stats"`

	// Run is the optimization as recorded in the scenario's store.
	Run store.Run `json:"run"`

	// Outputs maps target names ("qasm3", "qasm2", "pennylane") to the
	// lowered program text.
	Outputs map[string]string `json:"outputs,omitempty"`

	// Err is the first error the pipeline produced, if any.
	Err error `json:"-"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	circuit *ir.Circuit
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Outputs: make(map[string]string),
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Circuit returns the optimized circuit, or nil if passes did not complete.
func (r *Result) Circuit() *ir.Circuit {
	return r.circuit
}
